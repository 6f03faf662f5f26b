package telegram

import (
	"strconv"
	"strings"
)

// Callback action constants.
const (
	actionCount    = "count"
	actionCategory = "category"
)

// callbackData represents structured callback data.
type callbackData struct {
	Action string
	Params []string
	Raw    string
}

// encode creates callback string.
func (cd callbackData) encode() string {
	if len(cd.Params) == 0 {
		return cd.Action
	}
	return cd.Action + ":" + strings.Join(cd.Params, ":")
}

// decodeCallback parses callback data string.
func decodeCallback(data string) callbackData {
	parts := strings.Split(data, ":")
	if len(parts) == 0 {
		return callbackData{Raw: data}
	}

	return callbackData{
		Action: parts[0],
		Params: parts[1:],
		Raw:    data,
	}
}

// buildCountCallback builds callback data for a question count button.
func buildCountCallback(count int) string {
	return callbackData{
		Action: actionCount,
		Params: []string{strconv.Itoa(count)},
	}.encode()
}

// buildCategoryCallback builds callback data for a category button.
func buildCategoryCallback(key string) string {
	return callbackData{
		Action: actionCategory,
		Params: []string{key},
	}.encode()
}
