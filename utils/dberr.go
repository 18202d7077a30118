package utils

import (
	"errors"
	"strings"

	mysql "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// IsDuplicateKey recognises unique-constraint violations from every driver we run on.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return true
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique constraint")
}
