// Package kv implements the per-user key-value capability.
package kv

import "errors"

var ErrInvalidKey = errors.New("kv namespace and key are required")

func validate(namespace, key string) error {
	if namespace == "" || key == "" {
		return ErrInvalidKey
	}
	return nil
}
