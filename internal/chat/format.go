package chat

import (
	"fmt"
	"time"

	"campus_lostfound/internal/model"
)

// RelativeTime 会话列表中最后一条消息的时间
// 一分钟内 "Just now"，一小时内 "Nm ago"，一天内 "Nh ago"，更早显示日期
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	minutes := int(now.Sub(t) / time.Minute)
	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%dh ago", minutes/60)
	}
	return t.In(now.Location()).Format("1/2/2006")
}

// ClockTime 消息气泡上的时刻
func ClockTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}

// DateLabel 消息分组标题："Today"、"Yesterday" 或日期
func DateLabel(t, now time.Time) string {
	loc := now.Location()
	y, m, d := t.In(loc).Date()
	ny, nm, nd := now.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)
	today := time.Date(ny, nm, nd, 0, 0, 0, 0, loc)
	switch {
	case day.Equal(today):
		return "Today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	}
	return day.Format("1/2/2006")
}

// DayGroup 同一天的消息
type DayGroup struct {
	Label    string
	Messages []model.Message
}

// GroupByDay 按本地日期分组，组按日期升序，组内保持原顺序
func GroupByDay(msgs []model.Message, now time.Time) []DayGroup {
	loc := now.Location()
	var groups []DayGroup
	index := make(map[string]int)
	var keys []time.Time
	for _, msg := range msgs {
		y, m, d := msg.CreatedAt.In(loc).Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, loc)
		key := day.Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Label: DateLabel(day, now)})
			keys = append(keys, day)
		}
		groups[i].Messages = append(groups[i].Messages, msg)
	}
	// 插入排序，组数很少
	for i := 1; i < len(groups); i++ {
		for j := i; j > 0 && keys[j].Before(keys[j-1]); j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
			groups[j], groups[j-1] = groups[j-1], groups[j]
		}
	}
	return groups
}

// UnreadTotal 所有会话未读数之和，用于导航栏角标
func UnreadTotal(convs []model.Conversation) int {
	total := 0
	for _, c := range convs {
		total += c.UnreadCount
	}
	return total
}
