package bot

import (
	"fmt"

	"github.com/MMahdiAsghari/Woocommerce-Telegram-Bot/internal/domain"
)

// Catalog keys. Operational texts (usage hints, fetch failures) stay English
// only, mirroring what admins of the original deployments saw.
const (
	msgWelcome         = "welcome"
	msgSettings        = "settings"
	msgToggleLowStock  = "toggle_low_stock"
	msgToggleNewOrders = "toggle_new_orders"
	msgThresholdPrompt = "threshold_prompt"
	msgThresholdSet    = "threshold_set"
	msgThresholdError  = "threshold_error"
	msgWatchPrompt     = "watch_prompt"
	msgWatchSet        = "watch_set"
	msgWatchError      = "watch_error"
	msgLangSet         = "lang_set"
	msgCurrencyPrompt  = "currency_prompt"
	msgCurrencySet     = "currency_set"
	msgCurrencyError   = "currency_error"
	msgNotAuthorized   = "not_authorized"
	msgAPIError        = "api_error"
	msgAPIRecovered    = "api_recovered"
	msgCredentialError = "credential_error"
	msgStats           = "stats"
	msgSearchNoQuery   = "search_no_query"
	msgSearchNoResults = "search_no_results"
	msgProductsEmpty   = "products_no_results"
	msgConfirmAction   = "confirm_action"
	msgCancelled       = "cancelled"
)

var catalogs = map[domain.Locale]map[string]string{
	domain.LocaleEnglish: {
		msgWelcome:         "Hello %s! 👋\nI’m your WooCommerce store assistant.\nUse /settings to configure notifications or /help for commands.",
		msgSettings:        "⚙️ **Notification Settings**\n\nLow Stock Alerts: %s\nNew Order Alerts: %s\nWatched Product: %s\nLow Stock Threshold: %d units\nLanguage: %s\nCurrency: %s",
		msgToggleLowStock:  "Low stock notifications set to: %s",
		msgToggleNewOrders: "New order notifications set to: %s",
		msgThresholdPrompt: "Please send the new low stock threshold (e.g., 10):",
		msgThresholdSet:    "✅ Low stock threshold set to %d units.",
		msgThresholdError:  "⚠️ Please enter a valid number (e.g., 10).",
		msgWatchPrompt:     "Please send the product ID to watch (e.g., 15):",
		msgWatchSet:        "✅ Watching product ID %d for stock ≤ %d.",
		msgWatchError:      "⚠️ Please enter a valid product ID.",
		msgLangSet:         "✅ Language set to %s.",
		msgCurrencyPrompt:  "Please send the new currency (e.g., USD, EUR, IRR, IRT):",
		msgCurrencySet:     "✅ Currency set to %s.",
		msgCurrencyError:   "⚠️ Invalid currency. Use: USD, EUR, IRR, IRT",
		msgNotAuthorized:   "⚠️ You’re not authorized to use this bot!",
		msgAPIError:        "⚠️ Repeated API failures detected: %s",
		msgAPIRecovered:    "✅ Store API recovered. Monitoring resumed.",
		msgCredentialError: "⚠️ Store API rejected the configured credentials. Check the API key and secret.",
		msgStats:           "📊 **Store Stats**\n\nTotal Orders: %d\nTotal Revenue: %s%s\nTop Product: %s (%s%s)",
		msgSearchNoQuery:   "⚠️ Please provide a search term. Usage: /search <name or SKU>",
		msgSearchNoResults: "No products found matching your search.",
		msgProductsEmpty:   "No products found.",
		msgConfirmAction:   "Set order %d to %s?",
		msgCancelled:       "Cancelled.",
	},
	domain.LocaleFarsi: {
		msgWelcome:         "سلام %s! 👋\nمن دستیار فروشگاه ووکامرس شما هستم.\nاز /settings برای تنظیم اعلان‌ها یا /help برای دستورات استفاده کنید.",
		msgSettings:        "⚙️ **تنظیمات اعلان‌ها**\n\nاعلان‌های کمبود موجودی: %s\nاعلان‌های سفارش جدید: %s\nمحصول تحت نظر: %s\nحد آستانه کمبود موجودی: %d واحد\nزبان: %s\nارز: %s",
		msgToggleLowStock:  "اعلان‌های کمبود موجودی تنظیم شد به: %s",
		msgToggleNewOrders: "اعلان‌های سفارش جدید تنظیم شد به: %s",
		msgThresholdPrompt: "لطفاً آستانه جدید کمبود موجودی را ارسال کنید (مثلاً 10):",
		msgThresholdSet:    "✅ آستانه کمبود موجودی تنظیم شد به %d واحد.",
		msgThresholdError:  "⚠️ لطفاً یک عدد معتبر وارد کنید (مثلاً 10).",
		msgWatchPrompt:     "لطفاً شناسه محصول را برای نظارت ارسال کنید (مثلاً 15):",
		msgWatchSet:        "✅ نظارت بر محصول با شناسه %d برای موجودی ≤ %d.",
		msgWatchError:      "⚠️ لطفاً یک شناسه محصول معتبر وارد کنید.",
		msgLangSet:         "✅ زبان تنظیم شد به %s.",
		msgCurrencyPrompt:  "لطفاً ارز جدید را ارسال کنید (مثلاً USD، EUR، IRR، IRT):",
		msgCurrencySet:     "✅ ارز تنظیم شد به %s.",
		msgCurrencyError:   "⚠️ ارز نامعتبر. از این‌ها استفاده کنید: USD، EUR، IRR، IRT",
		msgNotAuthorized:   "⚠️ شما مجاز به استفاده از این ربات نیستید!",
		msgAPIError:        "⚠️ خطاهای مکرر API شناسایی شد: %s",
		msgAPIRecovered:    "✅ ارتباط با API فروشگاه برقرار شد. نظارت ادامه دارد.",
		msgCredentialError: "⚠️ اعتبارنامه‌های API فروشگاه رد شد. کلید و رمز API را بررسی کنید.",
		msgStats:           "📊 **آمار فروشگاه**\n\nتعداد کل سفارش‌ها: %d\nدرآمد کل: %s%s\nمحصول برتر: %s (%s%s)",
		msgSearchNoQuery:   "⚠️ لطفاً یک عبارت جستجو وارد کنید. استفاده: /search <نام یا SKU>",
		msgSearchNoResults: "هیچ محصولی با جستجوی شما یافت نشد.",
		msgProductsEmpty:   "هیچ محصولی یافت نشد.",
		msgConfirmAction:   "سفارش %d به وضعیت %s تغییر کند؟",
		msgCancelled:       "لغو شد.",
	},
}

// tr renders a catalog entry for a locale, falling back to English for any
// key a locale is missing.
func tr(locale domain.Locale, key string, args ...any) string {
	c, ok := catalogs[locale]
	if !ok {
		c = catalogs[domain.LocaleEnglish]
	}
	format, ok := c[key]
	if !ok {
		format = catalogs[domain.LocaleEnglish][key]
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func localeDisplay(l domain.Locale) string {
	if l == domain.LocaleFarsi {
		return "Farsi"
	}
	return "English"
}

func enabledDisplay(on bool) string {
	if on {
		return "Enabled"
	}
	return "Disabled"
}

const helpText = "Available commands:\n" +
	"/start - Welcome message\n" +
	"/settings - Configure notifications and currency\n" +
	"/help - Show this message\n" +
	"/products [page] - List all products with details\n" +
	"/search <query> - Search products by name or SKU\n" +
	"/update <product_id> [price] [stock] - Update product price and stock ('-' skips)\n" +
	"/orders - View recent orders\n" +
	"/order <order_id> - View order details\n" +
	"/customers - List all customers\n" +
	"/customer <customer_id> - View customer details and order history\n" +
	"/stats - Show store statistics\n" +
	"/bulkupdate <type> <new_value> <id1> <id2> ... - Bulk update orders or products (type: order_status, product_price, product_stock)\n" +
	"/cancel - Abandon the current input"
