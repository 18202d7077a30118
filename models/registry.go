package models

// All lists every persisted model in parent -> child order for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Room{},
		&Tenant{},
		&Contract{},
		&Transaction{},
		&Billing{},
		&Settlement{},
		&ContractTemplate{},
		&ContractSigningSession{},
		&Upload{},
	}
}
