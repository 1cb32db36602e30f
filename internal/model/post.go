package model

import "strings"

// ItemType 失物/招领帖子的物品分类
type ItemType string

const (
	ItemBook        ItemType = "BOOK"
	ItemClothing    ItemType = "CLOTHING"
	ItemElectronics ItemType = "ELECTRONICS"
	ItemWaterBottle ItemType = "WATERBOTTLE"
	ItemAccessories ItemType = "ACCESSORIES"
	ItemID          ItemType = "ID"
	ItemWallet      ItemType = "WALLET"
	ItemKeys        ItemType = "KEYS"
	ItemBags        ItemType = "BAGS"
	ItemOther       ItemType = "OTHER"

	// AllCategories 筛选时表示"不过滤"，不是合法的帖子分类
	AllCategories ItemType = "ALL"
)

// ItemTypes 按展示顺序列出全部合法分类
var ItemTypes = []ItemType{
	ItemBook,
	ItemClothing,
	ItemElectronics,
	ItemWaterBottle,
	ItemAccessories,
	ItemID,
	ItemWallet,
	ItemKeys,
	ItemBags,
	ItemOther,
}

// Valid 是否为合法的帖子分类（不含 ALL）
func (t ItemType) Valid() bool {
	for _, it := range ItemTypes {
		if it == t {
			return true
		}
	}
	return false
}

// Label 分类的展示名称
func (t ItemType) Label() string {
	switch t {
	case AllCategories:
		return "All"
	case ItemWaterBottle:
		return "Water Bottle"
	case ItemID:
		return "ID"
	}
	s := strings.ToLower(string(t))
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseItemType 大小写不敏感地解析分类，ok 为 false 表示不是合法分类
func ParseItemType(s string) (ItemType, bool) {
	t := ItemType(strings.ToUpper(strings.TrimSpace(s)))
	if t == AllCategories {
		return t, true
	}
	return t, t.Valid()
}

// Post 一条失物/招领帖子
type Post struct {
	ID       int64    `json:"id"`
	UserID   int64    `json:"userId"`
	Username string   `json:"username"`
	ItemType ItemType `json:"itemType"`
	Content  string   `json:"content"`
	HasImage bool     `json:"hasImage"`
}
