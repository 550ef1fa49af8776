package ports_test

import (
	"testing"

	"github.com/target/rightname-go/internal/mocks"
	authmocks "github.com/target/rightname-go/internal/mocks/auth"
	"github.com/target/rightname-go/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.IdentityProvider = (*authmocks.MockIdentityProvider)(nil)
	var _ ports.IdentityAPI = (*authmocks.FakeIdentityAPI)(nil)
	var _ ports.DurableStore = (*authmocks.MemoryStore)(nil)
	var _ ports.Navigator = (*authmocks.RecordingNavigator)(nil)
	var _ ports.AuthPrompt = (*authmocks.RecordingPrompt)(nil)
	var _ ports.IdentityAPI = (*mocks.MockIdentityAPI)(nil)
	var _ ports.EvaluationAPI = (*mocks.MockEvaluationAPI)(nil)
	var _ ports.ProgressFeed = (*mocks.MockProgressFeed)(nil)
}
