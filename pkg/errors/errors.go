package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 群发模块错误。
var (
	MailingNotFound       = Definition{Code: "MAILING_NOT_FOUND", Message: "Mailing not found"}
	MailingNotCancellable = Definition{Code: "MAILING_NOT_CANCELLABLE", Message: "Mailing already started or finished"}
	MailingEmptyContent   = Definition{Code: "MAILING_EMPTY_CONTENT", Message: "Mailing content is empty"}
	MailingPastSchedule   = Definition{Code: "MAILING_PAST_SCHEDULE", Message: "Mailing scheduled time is in the past"}
)

// 促销模块错误。
var (
	CodeNotFound       = Definition{Code: "CODE_NOT_FOUND", Message: "Promo code not found"}
	CodeExpired        = Definition{Code: "CODE_EXPIRED", Message: "Promo code is outside its active window"}
	CodeDisabled       = Definition{Code: "CODE_DISABLED", Message: "Promo code is disabled"}
	ProductMismatch    = Definition{Code: "PRODUCT_MISMATCH", Message: "Promo code is scoped to another product"}
	PromoWindowOverlap = Definition{Code: "PROMO_WINDOW_OVERLAP", Message: "Another promo is active for this product in that window"}
	InvalidDiscount    = Definition{Code: "INVALID_DISCOUNT", Message: "Discount percentage must be between 0 and 100 exclusive"}
	InvalidWindow      = Definition{Code: "INVALID_WINDOW", Message: "Promo window end must be after start"}
)

// 商品目录错误。
var (
	ProductNotFound  = Definition{Code: "PRODUCT_NOT_FOUND", Message: "Product not found"}
	CategoryNotFound = Definition{Code: "CATEGORY_NOT_FOUND", Message: "Category not found"}
)

// 购物车错误。
var (
	CartEmpty        = Definition{Code: "CART_EMPTY", Message: "Cart is empty"}
	CartLineNotFound = Definition{Code: "CART_LINE_NOT_FOUND", Message: "Cart line not found"}
)

// 收件人错误。
var (
	RecipientNotFound = Definition{Code: "RECIPIENT_NOT_FOUND", Message: "Recipient not found"}
)

// 支持请求错误。
var (
	SupportRequestEmpty = Definition{Code: "SUPPORT_REQUEST_EMPTY", Message: "Support request text is empty"}
)

// 通用错误。
var (
	Unauthorized    = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests"}
	InvalidRequest  = Definition{Code: "INVALID_REQUEST", Message: "Invalid request payload"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	MailingNotFound.Code:       MailingNotFound,
	MailingNotCancellable.Code: MailingNotCancellable,
	MailingEmptyContent.Code:   MailingEmptyContent,
	MailingPastSchedule.Code:   MailingPastSchedule,
	CodeNotFound.Code:          CodeNotFound,
	CodeExpired.Code:           CodeExpired,
	CodeDisabled.Code:          CodeDisabled,
	ProductMismatch.Code:       ProductMismatch,
	PromoWindowOverlap.Code:    PromoWindowOverlap,
	InvalidDiscount.Code:       InvalidDiscount,
	InvalidWindow.Code:         InvalidWindow,
	ProductNotFound.Code:       ProductNotFound,
	CategoryNotFound.Code:      CategoryNotFound,
	CartEmpty.Code:             CartEmpty,
	CartLineNotFound.Code:      CartLineNotFound,
	RecipientNotFound.Code:     RecipientNotFound,
	SupportRequestEmpty.Code:   SupportRequestEmpty,
	Unauthorized.Code:          Unauthorized,
	TooManyRequests.Code:       TooManyRequests,
	InvalidRequest.Code:        InvalidRequest,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
