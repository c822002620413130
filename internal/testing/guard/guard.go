package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PULSO_TEST_MODE") == "" {
			_ = os.Setenv("PULSO_TEST_MODE", "1")
		}
	})
}
