package bankaccounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/skyhaventravel/skyhaven-backend/pkg/db/models"
)

func TestListActiveSkipsDisabledAccounts(t *testing.T) {
	gdb, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, gdb.AutoMigrate(&models.BankAccount{}))

	require.NoError(t, gdb.Create(&models.BankAccount{
		ID: uuid.New(), BankName: "First Harbor Bank", AccountNumber: "0011223344", AccountName: "Skyhaven Travel Ltd", Active: true,
	}).Error)
	require.NoError(t, gdb.Create(&models.BankAccount{
		ID: uuid.New(), BankName: "Old Pier Bank", AccountNumber: "9988776655", AccountName: "Skyhaven Travel Ltd", Active: false,
	}).Error)

	svc, err := NewService(NewRepository(gdb))
	require.NoError(t, err)

	accounts, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Equal(t, "First Harbor Bank", accounts[0].BankName)
}
