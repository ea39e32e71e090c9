package service

import (
	"errors"
	"strings"

	"github.com/spf13/cast"
)

// settingText 非字符串视为空
func settingText(raw interface{}) string {
	text, _ := raw.(string)
	return strings.TrimSpace(text)
}

// clipRunes 按字符数截断
func clipRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit])
	}
	return text
}

// settingBool 额外接受 yes / on
func settingBool(raw interface{}) bool {
	if text, ok := raw.(string); ok {
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "yes" || text == "on" {
			return true
		}
		raw = text
	}
	value, err := cast.ToBoolE(raw)
	return err == nil && value
}

// settingInt 缺失或空串返回错误，小数向零截断
func settingInt(raw interface{}) (int, error) {
	if text, ok := raw.(string); ok {
		raw = strings.TrimSpace(text)
		if raw == "" {
			return 0, errors.New("empty setting value")
		}
	}
	if raw == nil {
		return 0, errors.New("missing setting value")
	}
	return cast.ToIntE(raw)
}
