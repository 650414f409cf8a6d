// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package dmp

import (
	"fmt"
	"os"
)

// ReadFirmwareImage loads a co-processor firmware blob from disk and checks
// it fits the device's program memory. The blob is vendor-distributed and
// treated as opaque.
func ReadFirmwareImage(path string) ([]byte, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read firmware image: %w", err)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("firmware image %s is empty", path)
	}
	if len(image) > memBankSize*memBanks {
		return nil, fmt.Errorf("firmware image %s is %d bytes, exceeds %d bytes of DMP memory",
			path, len(image), memBankSize*memBanks)
	}
	return image, nil
}
