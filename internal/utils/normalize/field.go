package normalize

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var stateAbbrev = map[string]string{
	"NSW":                          "NSW",
	"NEW SOUTH WALES":              "NSW",
	"QLD":                          "QLD",
	"QUEENSLAND":                   "QLD",
	"VIC":                          "VIC",
	"VICTORIA":                     "VIC",
	"WA":                           "WA",
	"WESTERN AUSTRALIA":            "WA",
	"SA":                           "SA",
	"SOUTH AUSTRALIA":              "SA",
	"TAS":                          "TAS",
	"TASMANIA":                     "TAS",
	"NT":                           "NT",
	"NORTHERN TERRITORY":           "NT",
	"ACT":                          "ACT",
	"AUSTRALIAN CAPITAL TERRITORY": "ACT",
}

// Text 去掉首尾空白并合并连续空白
func Text(s string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(s), " ")
}

// State 将州名统一为缩写（NSW/QLD/...），无法识别返回空串
func State(s string) string {
	key := strings.ToUpper(Text(strings.ReplaceAll(s, ".", "")))
	return stateAbbrev[key]
}

// Email 小写化，格式不合法时丢弃
func Email(s string) string {
	e := strings.ToLower(strings.TrimSpace(s))
	if e == "" || validate.Var(e, "email") != nil {
		return ""
	}
	return e
}

// URL 补全缺失的协议头，格式不合法时丢弃
func URL(s string) string {
	u := strings.TrimSpace(s)
	if u == "" {
		return ""
	}
	if !strings.Contains(u, "://") {
		if !strings.Contains(u, ".") {
			return ""
		}
		u = "https://" + strings.TrimPrefix(u, "//")
	}
	if validate.Var(u, "url") != nil {
		return ""
	}
	return u
}
