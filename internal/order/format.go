package order

import (
	"fmt"
	"strings"

	"github.com/an26179529/GroupBot/internal/catalog"
)

func formatOpenPrompt(restaurants []catalog.Restaurant) string {
	if len(restaurants) == 0 {
		return "開始點餐！目前沒有可用的餐廳，請輸入 /order 餐廳名稱 來選擇"
	}
	var b strings.Builder
	b.WriteString("開始點餐！請選擇餐廳：\n")
	for idx, r := range restaurants {
		fmt.Fprintf(&b, "%d. %s\n", idx+1, r.Name)
	}
	return strings.TrimSpace(b.String())
}

func formatRestaurants(restaurants []catalog.Restaurant) string {
	if len(restaurants) == 0 {
		return "目前沒有可用的餐廳喔～"
	}
	var b strings.Builder
	b.WriteString("目前可選餐廳：\n")
	for idx, r := range restaurants {
		fmt.Fprintf(&b, "%d. %s\n", idx+1, r.Name)
	}
	return strings.TrimSpace(b.String())
}

func formatSelected(restaurant string, menu catalog.Menu) string {
	var b strings.Builder
	fmt.Fprintf(&b, "已選擇餐廳：%s\n", restaurant)
	if len(menu) == 0 {
		b.WriteString("這家餐廳沒有提供菜單，請直接輸入 /join 品項 數量")
		return b.String()
	}
	b.WriteString("菜單：\n")
	for _, it := range menu {
		fmt.Fprintf(&b, "- %s $%s\n", it.Name, it.Price.String())
	}
	b.WriteString("請輸入 /join 品項 數量 加入點餐")
	return b.String()
}

func formatJoined(l Line) string {
	return fmt.Sprintf("%s 點了 %s x %d", l.ParticipantName, l.Item, l.Quantity)
}

func formatList(sess *Session) string {
	if sess == nil {
		return "目前沒有進行中的點餐"
	}
	if len(sess.Lines) == 0 {
		if sess.HasRestaurant() {
			return fmt.Sprintf("餐廳：%s\n還沒有人點餐", sess.Restaurant)
		}
		return "還沒有人點餐，請先選擇餐廳"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "目前點餐（%s）：\n", sess.Restaurant)
	for idx, l := range sess.Lines {
		fmt.Fprintf(&b, "%d. %s：%s x %d\n", idx+1, l.ParticipantName, l.Item, l.Quantity)
	}
	return strings.TrimSpace(b.String())
}

func formatSummary(sess *Session, totals []ItemTotal) string {
	var b strings.Builder
	fmt.Fprintf(&b, "點餐結束！餐廳：%s\n統計：\n", sess.Restaurant)
	for _, t := range totals {
		fmt.Fprintf(&b, "- %s x %d\n", t.Item, t.Quantity)
	}
	if sum, ok := estimate(totals, sess.Menu.Price); ok {
		fmt.Fprintf(&b, "預估金額：$%s\n", sum.String())
	}
	return strings.TrimSpace(b.String())
}

func formatEcho(text string) string {
	return "你說的是：" + text
}
