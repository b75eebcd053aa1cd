package utils

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateManifestCode generates a human-readable manifest code,
// e.g. MF-20260830-4821. Uniqueness is enforced by the caller.
func GenerateManifestCode() string {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	suffix := ""
	for i := 0; i < 4; i++ {
		suffix += fmt.Sprintf("%d", rng.Intn(10))
	}
	return "MF-" + time.Now().Format("20060102") + "-" + suffix
}
