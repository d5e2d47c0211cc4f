package handler

import (
	"reflect"
	"regexp"
	"strings"
)

var (
	scriptBlock = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	htmlTag     = regexp.MustCompile(`<[^>]*>`)
	unsafeChars = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", "&", "")
)

// sanitizeText strips script blocks, markup and the characters < > " ' &
// from user text, then trims it.
func sanitizeText(s string) string {
	s = scriptBlock.ReplaceAllString(s, "")
	s = htmlTag.ReplaceAllString(s, "")
	s = unsafeChars.Replace(s)
	return strings.TrimSpace(s)
}

// trimStrings trims whitespace from all string and *string fields in a struct.
func trimStrings(v any) {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return
	}

	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(strings.TrimSpace(field.String()))
		case reflect.Ptr:
			if !field.IsNil() && field.Elem().Kind() == reflect.String {
				field.Elem().SetString(strings.TrimSpace(field.Elem().String()))
			}
		}
	}
}
