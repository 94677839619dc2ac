package domain_test

import (
	"testing"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int          { return &v }
func int64Ptr(v int64) *int64    { return &v }
func boolPtr(v bool) *bool       { return &v }

func TestDefaultSettings(t *testing.T) {
	s := domain.DefaultSettings()
	assert.True(t, s.NotifyLowStock)
	assert.True(t, s.NotifyNewOrders)
	assert.Equal(t, 5, s.LowStockThreshold)
	assert.Nil(t, s.WatchedProductID)
	assert.Equal(t, domain.LocaleEnglish, s.Locale)
	assert.Equal(t, domain.CurrencyUSD, s.Currency)
}

func TestApply_PartialUpdateLeavesRestUnchanged(t *testing.T) {
	s := domain.DefaultSettings()

	out, err := s.Apply(domain.SettingsPatch{LowStockThreshold: intPtr(12)})
	require.NoError(t, err)

	assert.Equal(t, 12, out.LowStockThreshold)
	assert.True(t, out.NotifyLowStock)
	assert.Equal(t, domain.CurrencyUSD, out.Currency)
	// original untouched
	assert.Equal(t, 5, s.LowStockThreshold)
}

func TestApply_RejectsNegativeThreshold(t *testing.T) {
	s := domain.DefaultSettings()
	_, err := s.Apply(domain.SettingsPatch{LowStockThreshold: intPtr(-1)})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestApply_CurrencyEnum(t *testing.T) {
	s := domain.DefaultSettings()

	for _, code := range []domain.Currency{domain.CurrencyUSD, domain.CurrencyEUR, domain.CurrencyIRR, domain.CurrencyIRT} {
		c := code
		out, err := s.Apply(domain.SettingsPatch{Currency: &c})
		require.NoError(t, err)
		assert.Equal(t, code, out.Currency)
	}

	bogus := domain.Currency("GBP")
	_, err := s.Apply(domain.SettingsPatch{Currency: &bogus})
	assert.True(t, domain.IsValidation(err))
}

func TestApply_LocaleEnum(t *testing.T) {
	s := domain.DefaultSettings()
	fa := domain.LocaleFarsi
	out, err := s.Apply(domain.SettingsPatch{Locale: &fa})
	require.NoError(t, err)
	assert.Equal(t, domain.LocaleFarsi, out.Locale)

	bogus := domain.Locale("de")
	_, err = s.Apply(domain.SettingsPatch{Locale: &bogus})
	assert.True(t, domain.IsValidation(err))
}

func TestApply_WatchedProductSetAndClear(t *testing.T) {
	s := domain.DefaultSettings()

	out, err := s.Apply(domain.SettingsPatch{WatchedProductID: int64Ptr(15)})
	require.NoError(t, err)
	require.NotNil(t, out.WatchedProductID)
	assert.Equal(t, int64(15), *out.WatchedProductID)

	out2, err := out.Apply(domain.SettingsPatch{ClearWatched: true})
	require.NoError(t, err)
	assert.Nil(t, out2.WatchedProductID)
}

func TestApply_Toggles(t *testing.T) {
	s := domain.DefaultSettings()
	out, err := s.Apply(domain.SettingsPatch{NotifyLowStock: boolPtr(false), NotifyNewOrders: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, out.NotifyLowStock)
	assert.False(t, out.NotifyNewOrders)
}

func TestCurrencySymbols(t *testing.T) {
	assert.Equal(t, "$", domain.CurrencyUSD.Symbol())
	assert.Equal(t, "€", domain.CurrencyEUR.Symbol())
	assert.Equal(t, "IRR", domain.CurrencyIRR.Symbol())
	assert.Equal(t, "تومان", domain.CurrencyIRT.Symbol())
}

func TestParseOrderStatus(t *testing.T) {
	got, ok := domain.ParseOrderStatus("processing")
	require.True(t, ok)
	assert.Equal(t, domain.OrderProcessing, got)

	_, ok = domain.ParseOrderStatus("shipped")
	assert.False(t, ok)
}
