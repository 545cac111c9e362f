package botkit

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Разбирает JSON из аргументов команды
func ParseJSON[T any](src string) (T, error) {
	var args T

	if err := json.NewDecoder(strings.NewReader(src)).Decode(&args); err != nil {
		return *(new(T)), fmt.Errorf("parse command arguments: %w", err)
	}

	return args, nil
}
