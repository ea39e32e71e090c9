package service

import (
	"encoding/json"
	"testing"
)

func TestSettingInt(t *testing.T) {
	cases := []struct {
		name    string
		raw     interface{}
		want    int
		wantErr bool
	}{
		{name: "int", raw: 30, want: 30},
		{name: "float", raw: float64(12.9), want: 12},
		{name: "json number", raw: json.Number("45"), want: 45},
		{name: "padded string", raw: " 60 ", want: 60},
		{name: "blank string", raw: "  ", wantErr: true},
		{name: "missing", raw: nil, wantErr: true},
		{name: "garbage", raw: "ten", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := settingInt(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %d", got)
				}
				return
			}
			if err != nil || got != tc.want {
				t.Fatalf("want %d got %d err=%v", tc.want, got, err)
			}
		})
	}
}

func TestSettingBoolAndText(t *testing.T) {
	for _, raw := range []interface{}{true, "on", " YES ", "1", "true", 1} {
		if !settingBool(raw) {
			t.Fatalf("%#v should be true", raw)
		}
	}
	for _, raw := range []interface{}{false, "off", "", nil, 0, "maybe"} {
		if settingBool(raw) {
			t.Fatalf("%#v should be false", raw)
		}
	}
	if got := settingText(42); got != "" {
		t.Fatalf("non-string should be blank, got %q", got)
	}
	if got := clipRunes("会员等级名称", 4); got != "会员等级" {
		t.Fatalf("clip want 会员等级 got %q", got)
	}
}
