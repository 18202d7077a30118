package models

// RoomType is the kind of space a room card represents on the floor plan.
type RoomType string

const (
	RoomTypeSingle  RoomType = "1인실"
	RoomTypeDouble  RoomType = "2인실"
	RoomTypeQuad    RoomType = "4인실"
	RoomTypeSix     RoomType = "6인실"
	RoomTypeEight   RoomType = "8인실"
	RoomTypeMeeting RoomType = "회의실"
	RoomTypeHotDesk RoomType = "자유석"
	RoomTypePostBox RoomType = "비상주"
)

var roomTypes = []RoomType{
	RoomTypeSingle, RoomTypeDouble, RoomTypeQuad, RoomTypeSix, RoomTypeEight,
	RoomTypeMeeting, RoomTypeHotDesk, RoomTypePostBox,
}

func (t RoomType) Valid() bool {
	for _, v := range roomTypes {
		if v == t {
			return true
		}
	}
	return false
}

// IsOffice reports whether the room is leasable office space, i.e. counts
// toward occupancy.
func (t RoomType) IsOffice() bool {
	switch t {
	case RoomTypeMeeting, RoomTypeHotDesk, RoomTypePostBox:
		return false
	}
	return true
}

type RoomStatus string

const (
	RoomOccupied      RoomStatus = "입주"
	RoomVacant        RoomStatus = "공실"
	RoomContractEnded RoomStatus = "계약종료"
	RoomReserved      RoomStatus = "예약"
	RoomMaintenance   RoomStatus = "점검중"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomOccupied, RoomVacant, RoomContractEnded, RoomReserved, RoomMaintenance:
		return true
	}
	return false
}

type TenantType string

const (
	TenantResident    TenantType = "입주"
	TenantNonResident TenantType = "비상주"
)

func (t TenantType) Valid() bool {
	return t == TenantResident || t == TenantNonResident
}

type TerminationType string

const (
	TerminationEarly  TerminationType = "중도종료"
	TerminationExpiry TerminationType = "만기종료"
)

func (t TerminationType) Valid() bool {
	return t == TerminationEarly || t == TerminationExpiry
}

type DepositStatus string

const (
	DepositHeld         DepositStatus = "보유"
	DepositToPenalty    DepositStatus = "위약금전환"
	DepositToRentOffset DepositStatus = "임대료상계"
)

type BillingStatus string

const (
	BillingPending   BillingStatus = "대기"
	BillingPaid      BillingStatus = "완납"
	BillingOverdue   BillingStatus = "연체"
	BillingCancelled BillingStatus = "취소"
)

func (s BillingStatus) Valid() bool {
	switch s {
	case BillingPending, BillingPaid, BillingOverdue, BillingCancelled:
		return true
	}
	return false
}

// Open reports whether the billing still expects money.
func (s BillingStatus) Open() bool {
	return s == BillingPending || s == BillingOverdue
}

type TransactionType string

const (
	TxIncome  TransactionType = "수입"
	TxExpense TransactionType = "지출"
)

func (t TransactionType) Valid() bool {
	return t == TxIncome || t == TxExpense
}

type TransactionCategory string

const (
	CategoryRent          TransactionCategory = "월세"
	CategoryManagementFee TransactionCategory = "관리비수입"
	CategoryDepositIn     TransactionCategory = "보증금입금"
	CategoryPenalty       TransactionCategory = "위약금"
	CategoryRentOffset    TransactionCategory = "보증금상계"
	CategoryMeetingRoom   TransactionCategory = "회의실"
	CategoryHotDesk       TransactionCategory = "자유석"
	CategoryOtherIncome   TransactionCategory = "기타수입"

	CategoryMasterLease    TransactionCategory = "임대료"
	CategoryMaintenanceFee TransactionCategory = "관리비"
	CategoryUtilities      TransactionCategory = "공과금"
	CategoryRepair         TransactionCategory = "유지보수"
	CategoryPayroll        TransactionCategory = "인건비"
	CategorySupplies       TransactionCategory = "소모품"
	CategoryDepositReturn  TransactionCategory = "보증금반환"
	CategoryOtherExpense   TransactionCategory = "기타지출"
)

var categoriesByType = map[TransactionType][]TransactionCategory{
	TxIncome: {
		CategoryRent, CategoryManagementFee, CategoryDepositIn, CategoryPenalty,
		CategoryRentOffset, CategoryMeetingRoom, CategoryHotDesk, CategoryOtherIncome,
	},
	TxExpense: {
		CategoryMasterLease, CategoryMaintenanceFee, CategoryUtilities, CategoryRepair,
		CategoryPayroll, CategorySupplies, CategoryDepositReturn, CategoryOtherExpense,
	},
}

// BelongsTo reports whether the category is allowed for the given type.
func (c TransactionCategory) BelongsTo(t TransactionType) bool {
	for _, v := range categoriesByType[t] {
		if v == c {
			return true
		}
	}
	return false
}

// Categories returns the allowed categories of a transaction type.
func Categories(t TransactionType) []TransactionCategory {
	out := make([]TransactionCategory, len(categoriesByType[t]))
	copy(out, categoriesByType[t])
	return out
}

type SigningStatus string

const (
	SigningPendingTenant SigningStatus = "pending_tenant"
	SigningTenantSigned  SigningStatus = "tenant_signed"
	SigningPendingAdmin  SigningStatus = "pending_admin"
	SigningCompleted     SigningStatus = "completed"
	SigningSent          SigningStatus = "sent"
	SigningCancelled     SigningStatus = "cancelled"
)

type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleViewer UserRole = "viewer"
)

func (r UserRole) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}
