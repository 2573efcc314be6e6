package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/jwtauth/v5"
	"github.com/staffhq/wfm-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPayrollHandler struct{}

func (stubPayrollHandler) ComputeCycle(w http.ResponseWriter, r *http.Request)   { w.WriteHeader(http.StatusOK) }
func (stubPayrollHandler) GetCycle(w http.ResponseWriter, r *http.Request)       { w.WriteHeader(http.StatusOK) }
func (stubPayrollHandler) ListCycles(w http.ResponseWriter, r *http.Request)     { w.WriteHeader(http.StatusOK) }
func (stubPayrollHandler) LockCycle(w http.ResponseWriter, r *http.Request)      { w.WriteHeader(http.StatusOK) }
func (stubPayrollHandler) UnlockCycle(w http.ResponseWriter, r *http.Request)    { w.WriteHeader(http.StatusOK) }
func (stubPayrollHandler) MarkCyclePaid(w http.ResponseWriter, r *http.Request)  { w.WriteHeader(http.StatusOK) }
func (stubPayrollHandler) ExportCycleCSV(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
func (stubPayrollHandler) MarkLinesPaid(w http.ResponseWriter, r *http.Request)  { w.WriteHeader(http.StatusOK) }
func (stubPayrollHandler) UpdateLine(w http.ResponseWriter, r *http.Request)     { w.WriteHeader(http.StatusOK) }

type stubAttendanceHandler struct{}

func (stubAttendanceHandler) PunchIn(w http.ResponseWriter, r *http.Request)       { w.WriteHeader(http.StatusOK) }
func (stubAttendanceHandler) PunchOut(w http.ResponseWriter, r *http.Request)      { w.WriteHeader(http.StatusOK) }
func (stubAttendanceHandler) ToggleBreak(w http.ResponseWriter, r *http.Request)   { w.WriteHeader(http.StatusOK) }
func (stubAttendanceHandler) AdminUpsert(w http.ResponseWriter, r *http.Request)   { w.WriteHeader(http.StatusOK) }
func (stubAttendanceHandler) ClassifyMonth(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

type stubLeaveHandler struct{}

func (stubLeaveHandler) Apply(w http.ResponseWriter, r *http.Request)            { w.WriteHeader(http.StatusOK) }
func (stubLeaveHandler) Approve(w http.ResponseWriter, r *http.Request)          { w.WriteHeader(http.StatusOK) }
func (stubLeaveHandler) Reject(w http.ResponseWriter, r *http.Request)           { w.WriteHeader(http.StatusOK) }
func (stubLeaveHandler) AllocateBalances(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }
func (stubLeaveHandler) ListBalances(w http.ResponseWriter, r *http.Request)     { w.WriteHeader(http.StatusOK) }

func newTestRouter() http.Handler {
	return NewRouter(
		jwt.NewVerifier("test-secret"),
		stubPayrollHandler{},
		stubAttendanceHandler{},
		stubLeaveHandler{},
	)
}

func TestRouterHeartbeat(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouterRejectsMissingToken(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/payroll/cycles", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouterRoutesAuthenticatedRequest(t *testing.T) {
	t.Parallel()

	signer := jwtauth.New("HS256", []byte("test-secret"), nil)
	_, tokenString, err := signer.Encode(map[string]interface{}{"tenant_id": "t1", "user_id": "u1"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/payroll/cycles", nil)
	req.Header.Set("Authorization", "Bearer "+tokenString)

	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
