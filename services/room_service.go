package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"oreoffice-backend/models"
	"oreoffice-backend/utils"
)

type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

type RoomFilter struct {
	Status   models.RoomStatus
	RoomType models.RoomType
	Floor    string
}

// RoomInput carries the editable fields; nil means "leave as is".
type RoomInput struct {
	RoomNumber *string            `json:"room_number"`
	RoomType   *models.RoomType   `json:"room_type"`
	Status     *models.RoomStatus `json:"status"`
	Floor      *string            `json:"floor"`
	Area       *float64           `json:"area"`
	Capacity   *int               `json:"capacity"`
	Memo       *string            `json:"memo"`
	PositionX  *float64           `json:"position_x"`
	PositionY  *float64           `json:"position_y"`
	Width      *float64           `json:"width"`
	Height     *float64           `json:"height"`
}

type RoomPosition struct {
	ID     uint    `json:"id" binding:"required"`
	X      float64 `json:"position_x"`
	Y      float64 `json:"position_y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// List returns the rooms for the floor plan, each with its active contract
// and tenant attached.
func (s *RoomService) List(f RoomFilter) ([]models.Room, error) {
	q := s.DB.Model(&models.Room{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RoomType != "" {
		q = q.Where("room_type = ?", f.RoomType)
	}
	if f.Floor != "" {
		q = q.Where("floor = ?", f.Floor)
	}

	var rooms []models.Room
	if err := q.Order("floor ASC, room_number ASC").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	if len(rooms) == 0 {
		return rooms, nil
	}

	ids := make([]uint, 0, len(rooms))
	for _, r := range rooms {
		ids = append(ids, r.ID)
	}
	var contracts []models.Contract
	if err := s.DB.Preload("Tenant").
		Where("room_id IN ? AND is_active = ?", ids, true).
		Find(&contracts).Error; err != nil {
		return nil, fmt.Errorf("failed to load active contracts: %w", err)
	}
	byRoom := make(map[uint]*models.Contract, len(contracts))
	for i := range contracts {
		byRoom[contracts[i].RoomID] = &contracts[i]
	}
	for i := range rooms {
		rooms[i].ActiveContract = byRoom[rooms[i].ID]
	}
	return rooms, nil
}

func (s *RoomService) Get(id uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room: %w", err)
	}

	var active models.Contract
	err := s.DB.Preload("Tenant").Where("room_id = ? AND is_active = ?", id, true).First(&active).Error
	if err == nil {
		room.ActiveContract = &active
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load active contract: %w", err)
	}
	return &room, nil
}

func (s *RoomService) Create(room *models.Room) error {
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	if room.RoomNumber == "" {
		return validationError("호실 번호는 필수입니다.")
	}
	if room.RoomType == "" {
		room.RoomType = models.RoomTypeSingle
	}
	if !room.RoomType.Valid() {
		return validationError("알 수 없는 호실 유형입니다.")
	}
	if room.Status == "" {
		room.Status = models.RoomVacant
	}
	if !room.Status.Valid() {
		return validationError("알 수 없는 호실 상태입니다.")
	}

	if err := s.DB.Create(room).Error; err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrRoomNumberTaken
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

func (s *RoomService) Update(id uint, in RoomInput) (*models.Room, error) {
	updates := map[string]interface{}{}
	if in.RoomNumber != nil {
		num := strings.TrimSpace(*in.RoomNumber)
		if num == "" {
			return nil, validationError("호실 번호는 필수입니다.")
		}
		updates["room_number"] = num
	}
	if in.RoomType != nil {
		if !in.RoomType.Valid() {
			return nil, validationError("알 수 없는 호실 유형입니다.")
		}
		updates["room_type"] = *in.RoomType
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, validationError("알 수 없는 호실 상태입니다.")
		}
		updates["status"] = *in.Status
	}
	if in.Floor != nil {
		updates["floor"] = *in.Floor
	}
	if in.Area != nil {
		updates["area"] = *in.Area
	}
	if in.Capacity != nil {
		updates["capacity"] = *in.Capacity
	}
	if in.Memo != nil {
		updates["memo"] = *in.Memo
	}
	if in.PositionX != nil {
		updates["position_x"] = *in.PositionX
	}
	if in.PositionY != nil {
		updates["position_y"] = *in.PositionY
	}
	if in.Width != nil {
		updates["width"] = *in.Width
	}
	if in.Height != nil {
		updates["height"] = *in.Height
	}

	if _, err := s.Get(id); err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := s.DB.Model(&models.Room{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if utils.IsDuplicateKey(err) {
				return nil, ErrRoomNumberTaken
			}
			return nil, fmt.Errorf("failed to update room: %w", err)
		}
	}
	return s.Get(id)
}

// UpdatePosition moves or resizes one card on the floor plan.
func (s *RoomService) UpdatePosition(id uint, p RoomPosition) (*models.Room, error) {
	if p.Width < 0 || p.Height < 0 {
		return nil, validationError("카드 크기는 음수일 수 없습니다.")
	}
	res := s.DB.Model(&models.Room{}).Where("id = ?", id).Updates(positionUpdates(p))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update position: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrRoomNotFound
	}
	return s.Get(id)
}

// SaveLayout stores the whole floor plan at once; either every card moves or none.
func (s *RoomService) SaveLayout(positions []RoomPosition) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		for _, p := range positions {
			if p.Width < 0 || p.Height < 0 {
				return validationError("카드 크기는 음수일 수 없습니다.")
			}
			res := tx.Model(&models.Room{}).Where("id = ?", p.ID).Updates(positionUpdates(p))
			if res.Error != nil {
				return fmt.Errorf("failed to save layout: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("room %d: %w", p.ID, ErrRoomNotFound)
			}
		}
		return nil
	})
}

func positionUpdates(p RoomPosition) map[string]interface{} {
	updates := map[string]interface{}{
		"position_x": p.X,
		"position_y": p.Y,
	}
	if p.Width > 0 {
		updates["width"] = p.Width
	}
	if p.Height > 0 {
		updates["height"] = p.Height
	}
	return updates
}

func (s *RoomService) Delete(id uint) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.Room
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRoomNotFound
			}
			return err
		}
		var active int64
		if err := tx.Model(&models.Contract{}).Where("room_id = ? AND is_active = ?", id, true).Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return ErrRoomHasActiveContract
		}
		// history rows still reference the room; retire its number for reuse
		if err := tx.Model(&room).Update("room_number", retiredRoomNumber(room)).Error; err != nil {
			return fmt.Errorf("failed to retire room number: %w", err)
		}
		return tx.Delete(&room).Error
	})
}

func retiredRoomNumber(room models.Room) string {
	return fmt.Sprintf("%s#%d", room.RoomNumber, room.ID)
}
