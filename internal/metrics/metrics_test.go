package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("owner_bookings", "200")
		IncBackend("confirm_booking", "ok")
		IncAction("confirm", "rejected")
		IncExport("csv")
	})
}
