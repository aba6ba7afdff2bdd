// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package tools

import (
	"fmt"
	"strings"
)

// ValidationRule checks tool arguments and returns an error if invalid.
type ValidationRule func(args map[string]interface{}) error

// ChainValidation runs rules in order until the first error.
func ChainValidation(rules ...ValidationRule) ValidationRule {
	return func(args map[string]interface{}) error {
		for _, rule := range rules {
			if rule == nil {
				continue
			}
			if err := rule(args); err != nil {
				return err
			}
		}
		return nil
	}
}

// RequireStringArg ensures a string argument is present and non-empty.
func RequireStringArg(key, message string) ValidationRule {
	return func(args map[string]interface{}) error {
		value, ok := args[key]
		if !ok || value == nil {
			return fmt.Errorf("%s", message)
		}
		str, ok := value.(string)
		if !ok || strings.TrimSpace(str) == "" {
			return fmt.Errorf("%s", message)
		}
		return nil
	}
}

// RequireOneOfArg ensures a string argument, when present, is one of the
// allowed values. Missing arguments pass; pair with RequireStringArg when
// the argument is mandatory.
func RequireOneOfArg(key string, allowed ...string) ValidationRule {
	return func(args map[string]interface{}) error {
		value, ok := args[key]
		if !ok || value == nil {
			return nil
		}
		str, ok := value.(string)
		if !ok {
			return fmt.Errorf("'%s' must be a string (one of: %s)", key, strings.Join(allowed, ", "))
		}
		for _, candidate := range allowed {
			if str == candidate {
				return nil
			}
		}
		return fmt.Errorf("'%s' must be one of: %s", key, strings.Join(allowed, ", "))
	}
}

// stringArg fetches an optional string argument, falling back to def when
// the key is absent or empty.
func stringArg(args map[string]interface{}, key, def string) string {
	if value, ok := args[key].(string); ok && strings.TrimSpace(value) != "" {
		return value
	}
	return def
}

// intArg fetches an optional integer argument. JSON numbers decode as
// float64, so both shapes are accepted.
func intArg(args map[string]interface{}, key string, def int) (int, bool) {
	value, ok := args[key]
	if !ok || value == nil {
		return def, false
	}
	switch v := value.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	default:
		return def, false
	}
}
