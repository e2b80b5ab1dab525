package memory_test

import (
	"testing"

	"github.com/goliatone/go-seoform/internal/store/memory"
	"github.com/goliatone/go-seoform/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.RunContract(t, func(t *testing.T) storetest.Store {
		return memory.New()
	})
}
