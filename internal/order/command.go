package order

import (
	"strconv"
	"strings"
)

type Kind int

const (
	KindEcho Kind = iota
	KindOpen
	KindSelectRestaurant
	KindJoin
	KindList
	KindClose
	KindRestaurants
)

func (k Kind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindSelectRestaurant:
		return "select_restaurant"
	case KindJoin:
		return "join"
	case KindList:
		return "list"
	case KindClose:
		return "close"
	case KindRestaurants:
		return "restaurants"
	default:
		return "echo"
	}
}

// Chat commands as typed by users.
const (
	CmdOrder         = "/order"
	CmdJoin          = "/join"
	CmdList          = "/list"
	CmdDone          = "/done"
	CmdRestaurants   = "/restaurants"
	AliasRestaurants = "查餐廳"
)

// MaxQuantity is the largest quantity a single join may carry.
const MaxQuantity = 999

// Command is a parsed chat message.
type Command struct {
	Kind       Kind
	Text       string
	Restaurant string
	Item       string
	Quantity   int
	// Malformed is set on join commands whose arguments did not parse.
	Malformed bool
}

// SelectPayload is the text a quick reply sends to pick a restaurant.
func SelectPayload(restaurant string) string {
	return CmdOrder + " " + restaurant
}

// Parse turns raw message text into a Command. Unknown text becomes KindEcho.
func Parse(raw string) Command {
	text := strings.TrimSpace(raw)
	switch text {
	case CmdOrder:
		return Command{Kind: KindOpen, Text: text}
	case CmdList:
		return Command{Kind: KindList, Text: text}
	case CmdDone:
		return Command{Kind: KindClose, Text: text}
	case CmdRestaurants, AliasRestaurants:
		return Command{Kind: KindRestaurants, Text: text}
	case CmdJoin:
		return Command{Kind: KindJoin, Text: text, Malformed: true}
	}

	if args, ok := cutCommand(text, CmdJoin); ok {
		cmd := Command{Kind: KindJoin, Text: text}
		item, qty, ok := parseJoinArgs(args)
		if !ok {
			cmd.Malformed = true
			return cmd
		}
		cmd.Item, cmd.Quantity = item, qty
		return cmd
	}
	if args, ok := cutCommand(text, CmdOrder); ok {
		if name := strings.TrimSpace(args); name != "" {
			return Command{Kind: KindSelectRestaurant, Text: text, Restaurant: name}
		}
	}
	return Command{Kind: KindEcho, Text: text}
}

// cutCommand returns the arguments after "name " in text.
func cutCommand(text, name string) (string, bool) {
	if !strings.HasPrefix(text, name+" ") {
		return "", false
	}
	return text[len(name)+1:], true
}

// parseJoinArgs splits "<item> <qty>", where the quantity is the last
// space-separated token and the item is everything before it. Quantities
// outside 1..MaxQuantity are rejected.
func parseJoinArgs(args string) (string, int, bool) {
	args = strings.TrimSpace(args)
	idx := strings.LastIndexAny(args, " \t")
	if idx < 0 {
		return "", 0, false
	}
	item := strings.TrimSpace(args[:idx])
	qty, err := strconv.Atoi(args[idx+1:])
	if item == "" || err != nil || qty <= 0 || qty > MaxQuantity {
		return "", 0, false
	}
	return item, qty, true
}
