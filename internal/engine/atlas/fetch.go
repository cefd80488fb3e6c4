package atlas

import (
	"fmt"

	getter "github.com/hashicorp/go-getter"
)

// Fetch downloads an atlas bundle (descriptor plus texture) into dst.
// src accepts any go-getter source: a local directory, an HTTP URL, or a
// git subdirectory like "git::https://host/repo.git//atlases/default".
func Fetch(dst, src string) error {
	if err := getter.Get(dst, src); err != nil {
		return fmt.Errorf("fetch atlas bundle from %s: %w", src, err)
	}
	return nil
}
