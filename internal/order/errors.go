package order

import "errors"

// The messages double as the reply shown to the group.
var (
	ErrAlreadyOpen           = errors.New("已經有進行中的點餐囉！請先用 /done 結束目前的點餐")
	ErrNoActiveSession       = errors.New("目前沒有進行中的點餐，請先輸入 /order 開始點餐")
	ErrRestaurantNotSelected = errors.New("請先選擇餐廳再加入點餐")
	ErrInvalidJoinFormat     = errors.New("格式錯誤！請輸入：/join 品項 數量，例如：/join 雞腿飯 1")
	ErrEmptyOrderOnClose     = errors.New("沒有人點餐，本次點餐已結束")
	ErrCatalogLookupFailed   = errors.New("找不到這家餐廳，請重新選擇")

	// ErrInvariant means the stored session is corrupt. It is reported to
	// operators and never shown verbatim.
	ErrInvariant = errors.New("order session invariant violated")
)

