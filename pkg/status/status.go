// Package status maps HTTP status codes to the human-readable messages shown
// to users when a backend call fails.
package status

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	LocaleZhCN = "zh-CN"
	LocaleEn   = "en"

	// DefaultLocale is used when no locale is configured.
	DefaultLocale = LocaleZhCN

	codePlaceholder = "{code}"
)

// Codes lists every status code the translator has a fixed message for.
var Codes = []int{400, 401, 403, 404, 405, 408, 500, 501, 502, 503, 504, 505}

type table struct {
	messages        map[int]string
	defaultMessage  string
	defaultWithCode string
}

var builtin = map[string]table{
	LocaleZhCN: {
		messages: map[int]string{
			400: "错误请求",
			401: "未授权，请重新登录",
			403: "拒绝访问",
			404: "请求错误,未找到该资源",
			405: "请求方法未允许",
			408: "请求超时",
			500: "服务器端出错",
			501: "网络未实现",
			502: "网络错误",
			503: "服务不可用",
			504: "网络超时",
			505: "http版本不支持该请求",
		},
		defaultMessage:  "连接错误",
		defaultWithCode: "连接错误{code}",
	},
	LocaleEn: {
		messages: map[int]string{
			400: "bad request",
			401: "unauthorized, please log in again",
			403: "access denied",
			404: "request error, resource not found",
			405: "request method not allowed",
			408: "request timeout",
			500: "internal server error",
			501: "not implemented",
			502: "bad gateway",
			503: "service unavailable",
			504: "gateway timeout",
			505: "http version not supported",
		},
		defaultMessage:  "connection error",
		defaultWithCode: "connection error {code}",
	},
}

// Translator is an immutable status code to message table.
type Translator struct {
	locale string
	table  table
}

// New returns the built-in translator for locale ("" selects DefaultLocale).
func New(locale string) (*Translator, error) {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DefaultLocale
	}
	t, ok := builtin[locale]
	if !ok {
		return nil, fmt.Errorf("unsupported locale %q (supported: %s)", locale, strings.Join(Locales(), ", "))
	}
	return &Translator{locale: locale, table: t.clone()}, nil
}

// Must is like New but panics on an unsupported locale.
func Must(locale string) *Translator {
	t, err := New(locale)
	if err != nil {
		panic(err)
	}
	return t
}

// Locales returns the built-in locale names, sorted.
func Locales() []string {
	out := make([]string, 0, len(builtin))
	for name := range builtin {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Locale reports the translator's locale.
func (t *Translator) Locale() string { return t.locale }

// Message returns the fixed message for code, or the default message with the
// code appended for codes outside the table.
func (t *Translator) Message(code int) string {
	if msg, ok := t.table.messages[code]; ok {
		return msg
	}
	return strings.ReplaceAll(t.table.defaultWithCode, codePlaceholder, strconv.Itoa(code))
}

// PlainMessage is like Message but unknown codes get the bare default message.
func (t *Translator) PlainMessage(code int) string {
	if msg, ok := t.table.messages[code]; ok {
		return msg
	}
	return t.table.defaultMessage
}

// Known reports whether code has a fixed message.
func (t *Translator) Known(code int) bool {
	_, ok := t.table.messages[code]
	return ok
}

func (tb table) clone() table {
	msgs := make(map[int]string, len(tb.messages))
	for code, msg := range tb.messages {
		msgs[code] = msg
	}
	tb.messages = msgs
	return tb
}
