package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/carejournal/carejournal/internal/api"
	"github.com/carejournal/carejournal/internal/api/handler"
	"github.com/carejournal/carejournal/internal/api/middleware"
	"github.com/carejournal/carejournal/internal/api/models"
	"github.com/carejournal/carejournal/internal/auth"
	"github.com/carejournal/carejournal/internal/department"
	"github.com/carejournal/carejournal/internal/device"
	"github.com/carejournal/carejournal/internal/medicine"
	"github.com/carejournal/carejournal/internal/memory"
	"github.com/carejournal/carejournal/internal/metrics"
	"github.com/carejournal/carejournal/internal/patient"
	"github.com/carejournal/carejournal/internal/patientjournal"
	"github.com/carejournal/carejournal/internal/patientmedicine"
	"github.com/carejournal/carejournal/internal/patienttodo"
	"github.com/carejournal/carejournal/internal/push"
	"github.com/carejournal/carejournal/internal/user"
)

const (
	testPassword       = "correct horse battery"
	testFirstUserToken = "bootstrap-secret"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []push.Message
}

func (s *recordingSender) Send(_ context.Context, msg push.Message) (*push.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return &push.Report{Success: len(msg.Tokens)}, nil
}

func (s *recordingSender) messages() []push.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]push.Message(nil), s.sent...)
}

// testApp wires every service on in-memory storage.
type testApp struct {
	router  http.Handler
	users   *user.Service
	devices *device.Service
	sender  *recordingSender
	metrics *metrics.Metrics
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	logger := zerolog.New(io.Discard)
	m := metrics.New(metrics.NewRegistry())
	hasher := &auth.BcryptHasher{Cost: bcrypt.MinCost}

	repos := memory.New()
	users := user.NewService(user.ServiceConfig{Repo: repos.Users, Hasher: hasher})
	devices := device.NewService(repos.Devices)
	departments := department.NewService(department.ServiceConfig{
		Repo:     repos.Departments,
		Users:    users,
		Patients: repos.Patients,
	})
	patients := patient.NewService(patient.ServiceConfig{
		Repo:        repos.Patients,
		Departments: departments,
	})
	medicines := medicine.NewService(repos.Medicines)

	sender := &recordingSender{}
	notifier := push.NewNotifier(push.NotifierConfig{
		Users:   users,
		Devices: devices,
		Sender:  sender,
		Metrics: m,
		Logger:  logger,
	})
	assignments := patientmedicine.NewService(patientmedicine.ServiceConfig{
		Repo:      repos.PatientMedicines,
		Patients:  patients,
		Medicines: medicines,
		Notifier:  notifier,
		Logger:    logger,
	})

	authService := auth.NewService(auth.ServiceConfig{
		JWTService: auth.NewJWTService(auth.JWTConfig{SigningKey: "test-secret-key-for-testing-only"}),
		Users:      users,
		Devices:    devices,
		Passwords:  hasher,
		Metrics:    m,
		Logger:     logger,
	})

	router := api.NewRouter(api.RouterConfig{
		Version:        "test",
		BuildTime:      "2026-01-01T00:00:00Z",
		Logger:         logger,
		Metrics:        m,
		MetricsHandler: m.Handler(),
		FirstUserToken: testFirstUserToken,

		AuthService:            authService,
		UserService:            users,
		DeviceService:          devices,
		DepartmentService:      departments,
		MedicineService:        medicines,
		PatientService:         patients,
		PatientMedicineService: assignments,
		PatientTodoService: patienttodo.NewService(patienttodo.ServiceConfig{
			Repo:        repos.PatientTodos,
			Assignments: assignments,
		}),
		PatientJournalService: patientjournal.NewService(patientjournal.ServiceConfig{
			Repo:     repos.PatientJournals,
			Patients: patients,
		}),
	})

	return &testApp{router: router, users: users, devices: devices, sender: sender, metrics: m}
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// bootstrap creates the first admin through the bootstrap endpoint and logs
// in as that admin.
func (a *testApp) bootstrap(t *testing.T) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/first-user/"+testFirstUserToken, "", models.UserCreateRequest{
		Name:     "Admin",
		Email:    "admin@carejournal.dk",
		Password: testPassword,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return a.login(t, "admin@carejournal.dk", nil)
}

func (a *testApp) createUser(t *testing.T, adminToken, email string, departmentID *int64) int64 {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/users", adminToken, models.UserCreateRequest{
		Name:         "Nurse",
		Email:        email,
		Password:     testPassword,
		JobTitle:     "Nurse",
		DepartmentID: departmentID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var u user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	return u.ID
}

func (a *testApp) login(t *testing.T, email string, deviceToken *string) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/login", "", models.LoginRequest{
		Email:       email,
		Password:    testPassword,
		DeviceToken: deviceToken,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result auth.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.Token)
	return result.Token
}

func createID(t *testing.T, rec *httptest.ResponseRecorder) int64 {
	t.Helper()
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var body struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotZero(t, body.ID)
	return body.ID
}

func problemOf(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	var p models.Problem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func strPtr(s string) *string {
	return &s
}

func TestRouter_HealthCheck(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/ops/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var health models.Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Details["version"])
}

func TestRouter_ReadinessCheck(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/ops/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestRouter_FirstUser(t *testing.T) {
	app := newTestApp(t)
	body := models.UserCreateRequest{Name: "Admin", Email: "admin@carejournal.dk", Password: testPassword, Role: "user"}

	rec := app.do(t, http.MethodPost, "/api/first-user/wrong", "", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = app.do(t, http.MethodPost, "/api/first-user/"+testFirstUserToken, "", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var u user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
	assert.Equal(t, user.RoleAdmin, u.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	body.Email = "second@carejournal.dk"
	rec = app.do(t, http.MethodPost, "/api/first-user/"+testFirstUserToken, "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_LoginFailuresAreIndistinguishable(t *testing.T) {
	app := newTestApp(t)
	app.bootstrap(t)

	wrongPassword := app.do(t, http.MethodPost, "/api/login", "", models.LoginRequest{
		Email: "admin@carejournal.dk", Password: "not the password",
	})
	unknownEmail := app.do(t, http.MethodPost, "/api/login", "", models.LoginRequest{
		Email: "nobody@carejournal.dk", Password: testPassword,
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)

	p1, p2 := problemOf(t, wrongPassword), problemOf(t, unknownEmail)
	assert.Equal(t, handler.LoginFailedTitle, p1.Title)
	assert.Equal(t, handler.LoginFailedDetail, p1.Detail)
	p1.TraceID, p2.TraceID = "", ""
	assert.Equal(t, p1, p2)
}

func TestRouter_LoginBindsDevice(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.bootstrap(t)
	nurseID := app.createUser(t, adminToken, "nurse@carejournal.dk", nil)

	app.login(t, "admin@carejournal.dk", strPtr("device-1"))
	app.login(t, "nurse@carejournal.dk", strPtr("device-1"))

	binding, err := app.devices.Get(context.Background(), "device-1")
	require.NoError(t, err)
	assert.Equal(t, nurseID, binding.UserID)
}

func TestRouter_SignOut(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.bootstrap(t)
	nurseID := app.createUser(t, adminToken, "nurse@carejournal.dk", nil)
	nurseToken := app.login(t, "nurse@carejournal.dk", strPtr("device-1"))

	t.Run("requires identity", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/signOut", "", models.SignOutRequest{UserID: nurseID, DeviceToken: "device-1"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, middleware.NoIdentityTitle, problemOf(t, rec).Title)
	})

	t.Run("only self", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/signOut", adminToken, models.SignOutRequest{UserID: nurseID, DeviceToken: "device-1"})
		require.Equal(t, http.StatusForbidden, rec.Code)
		p := problemOf(t, rec)
		assert.Equal(t, "Forbidden", p.Title)
		assert.Empty(t, p.Detail)
	})

	t.Run("removes binding once", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/signOut", nurseToken, models.SignOutRequest{UserID: nurseID, DeviceToken: "device-1"})
		require.Equal(t, http.StatusNoContent, rec.Code)

		exists, err := app.devices.Exists(context.Background(), "device-1")
		require.NoError(t, err)
		assert.False(t, exists)

		rec = app.do(t, http.MethodPost, "/api/signOut", nurseToken, models.SignOutRequest{UserID: nurseID, DeviceToken: "device-1"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, handler.SignOutFailedTitle, problemOf(t, rec).Title)
	})
}

func TestRouter_UserAccess(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.bootstrap(t)
	nurseID := app.createUser(t, adminToken, "nurse@carejournal.dk", nil)
	otherID := app.createUser(t, adminToken, "other@carejournal.dk", nil)
	nurseToken := app.login(t, "nurse@carejournal.dk", nil)

	t.Run("list is admin only", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/users", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = app.do(t, http.MethodGet, "/api/users", nurseToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, middleware.AccessDeniedTitle, problemOf(t, rec).Title)

		rec = app.do(t, http.MethodGet, "/api/users", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var users []user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		assert.Len(t, users, 3)
	})

	t.Run("current", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/users/current", nurseToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var u user.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &u))
		assert.Equal(t, nurseID, u.ID)
	})

	t.Run("self or admin", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", nurseID), nurseToken, nil).Code)
		assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", nurseID), adminToken, nil).Code)

		rec := app.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d", otherID), nurseToken, nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, problemOf(t, rec).Detail)
	})

	t.Run("only admins change roles", func(t *testing.T) {
		rec := app.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", nurseID), nurseToken,
			models.UserUpdateRequest{Role: strPtr("admin")})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = app.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", nurseID), nurseToken,
			models.UserUpdateRequest{JobTitle: strPtr("Head nurse")})
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = app.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d", nurseID), adminToken,
			models.UserUpdateRequest{Role: strPtr("admin")})
		require.Equal(t, http.StatusOK, rec.Code)

		// The new role applies to the next request with the same token.
		assert.Equal(t, http.StatusOK, app.do(t, http.MethodGet, "/api/users", nurseToken, nil).Code)
	})

	t.Run("delete removes access", func(t *testing.T) {
		otherToken := app.login(t, "other@carejournal.dk", strPtr("other-device"))
		rec := app.do(t, http.MethodDelete, fmt.Sprintf("/api/users/%d", otherID), otherToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		exists, err := app.devices.Exists(context.Background(), "other-device")
		require.NoError(t, err)
		assert.False(t, exists)

		assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/users/current", otherToken, nil).Code)
	})
}

func TestRouter_ListFilters(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.bootstrap(t)

	for _, title := range []string{"Panodil", "Ipren", "Panodil"} {
		rec := app.do(t, http.MethodPost, "/api/medicines", adminToken, models.MedicineCreateRequest{
			Title: title, Description: "Pain relief", ActiveSubstance: "paracetamol", PricePerMg: 0.5,
		})
		createID(t, rec)
	}

	rec := app.do(t, http.MethodGet, "/api/medicines?title=Panodil", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found []medicine.Medicine
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 2)
	assert.Less(t, found[0].ID, found[1].ID)

	rec = app.do(t, http.MethodGet, "/api/medicines?title=Panodil&title=Ipren", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = app.do(t, http.MethodGet, "/api/medicines?colour=red", adminToken, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, models.ProblemTypeBadFilter, problemOf(t, rec).Type)

	rec = app.do(t, http.MethodGet, "/api/medicines?pricePerMg=cheap", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/users?role=owner", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/users?passwordHash=x", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ClinicalFlow(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.bootstrap(t)

	departmentID := createID(t, app.do(t, http.MethodPost, "/api/departments", adminToken,
		models.DepartmentRequest{Title: "Afdeling B"}))
	nurseID := app.createUser(t, adminToken, "nurse@carejournal.dk", &departmentID)
	nurseToken := app.login(t, "nurse@carejournal.dk", strPtr("nurse-phone"))

	patientID := createID(t, app.do(t, http.MethodPost, "/api/patients", nurseToken, models.PatientCreateRequest{
		Name: "Jens Hansen", SocialSecurityNumber: "010101-1234", DepartmentID: departmentID,
	}))

	t.Run("duplicate ssn conflicts", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/patients", nurseToken, models.PatientCreateRequest{
			Name: "Other", SocialSecurityNumber: "010101-1234", DepartmentID: departmentID,
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("lookup by ssn", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/patients/ssn/010101-1234", nurseToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var p patient.Patient
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
		assert.Equal(t, patientID, p.ID)

		assert.Equal(t, http.StatusNotFound, app.do(t, http.MethodGet, "/api/patients/ssn/nobody", nurseToken, nil).Code)
	})

	medicineID := createID(t, app.do(t, http.MethodPost, "/api/medicines", nurseToken, models.MedicineCreateRequest{
		Title: "Panodil", Description: "Pain relief", ActiveSubstance: "paracetamol", PricePerMg: 0.5,
	}))

	assignmentID := createID(t, app.do(t, http.MethodPost, "/api/patient-medicines", nurseToken, models.PatientMedicineCreateRequest{
		PatientID: patientID, MedicineID: medicineID, Amount: 500, Unit: "mg",
	}))

	t.Run("assignment notifies department", func(t *testing.T) {
		sent := app.sender.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, []string{"nurse-phone"}, sent[0].Tokens)
		assert.Equal(t, patientmedicine.AssignedTitle, sent[0].Title)
		assert.Equal(t, "Jens Hansen er blevet tildelt Panodil", sent[0].Body)
	})

	t.Run("assignments embed patient and medicine", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, fmt.Sprintf("/api/patient-medicines?patientId=%d", patientID), nurseToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Equal(t, float64(assignmentID), list[0]["id"])
		assert.Equal(t, "Jens Hansen", list[0]["patient"].(map[string]any)["name"])
		assert.Equal(t, "Panodil", list[0]["medicine"].(map[string]any)["title"])

		rec = app.do(t, http.MethodGet, fmt.Sprintf("/api/patient-medicines/%d", assignmentID), nurseToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var one map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &one))
		assert.Equal(t, float64(patientID), one["patient"].(map[string]any)["id"])

		rec = app.do(t, http.MethodGet, "/api/patient-medicines?patient=1", nurseToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("assignment to missing patient", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/api/patient-medicines", nurseToken, models.PatientMedicineCreateRequest{
			PatientID: 999, MedicineID: medicineID, Amount: 1, Unit: "mg",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("todos and journals", func(t *testing.T) {
		todoBody := fmt.Sprintf(`{"patientMedicineId":%d,"patientId":%d,"userId":%d,"plannedTimeAtDay":"2026-03-01T08:00:00Z"}`,
			assignmentID, patientID, nurseID)
		req := httptest.NewRequest(http.MethodPost, "/api/patient-todos", strings.NewReader(todoBody))
		req.Header.Set("Authorization", "Bearer "+nurseToken)
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)
		todoID := createID(t, rec)

		rec = app.do(t, http.MethodPut, fmt.Sprintf("/api/patient-todos/%d", todoID), nurseToken,
			map[string]bool{"done": true})
		require.Equal(t, http.StatusOK, rec.Code)
		var todo patienttodo.PatientTodo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todo))
		assert.True(t, todo.Done)

		rec = app.do(t, http.MethodGet, fmt.Sprintf("/api/patient-todos?patientId=%d&done=true", patientID), nurseToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var todos []patienttodo.Detail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todos))
		require.Len(t, todos, 1)
		require.NotNil(t, todos[0].PatientMedicine)
		assert.Equal(t, assignmentID, todos[0].PatientMedicine.ID)

		rec = app.do(t, http.MethodGet, fmt.Sprintf("/api/patient-todos/%d", todoID), nurseToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var nested struct {
			ID              int64 `json:"id"`
			PatientMedicine struct {
				Patient  struct{ Name string }  `json:"patient"`
				Medicine struct{ Title string } `json:"medicine"`
			} `json:"patientMedicine"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nested))
		assert.Equal(t, todoID, nested.ID)
		assert.Equal(t, "Jens Hansen", nested.PatientMedicine.Patient.Name)
		assert.Equal(t, "Panodil", nested.PatientMedicine.Medicine.Title)

		createID(t, app.do(t, http.MethodPost, "/api/patient-journals", nurseToken, models.PatientJournalCreateRequest{
			PatientID: patientID, Description: "Sov godt i nat",
		}))
		rec = app.do(t, http.MethodPost, "/api/patient-journals", nurseToken, models.PatientJournalCreateRequest{PatientID: patientID})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.NotEmpty(t, problemOf(t, rec).Errors)
	})

	t.Run("department detail", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, fmt.Sprintf("/api/departments/%d", departmentID), nurseToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var detail department.Detail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
		assert.Equal(t, "Afdeling B", detail.Title)
		require.Len(t, detail.Users, 1)
		assert.Equal(t, nurseID, detail.Users[0].ID)
		require.Len(t, detail.Patients, 1)
	})

	t.Run("department list embeds members", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/api/departments?title=Afdeling%20B", nurseToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var list []department.Detail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
		require.Len(t, list, 1)
		assert.Len(t, list[0].Users, 1)
		assert.Len(t, list[0].Patients, 1)
	})

	t.Run("department with patients cannot be deleted", func(t *testing.T) {
		rec := app.do(t, http.MethodDelete, fmt.Sprintf("/api/departments/%d", departmentID), adminToken, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("clinical routes need identity", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, app.do(t, http.MethodGet, "/api/patients", "", nil).Code)
	})

	t.Run("bad id", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, app.do(t, http.MethodGet, "/api/patients/abc", nurseToken, nil).Code)
	})
}

func TestRouter_RequestID_Generated(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/ops/health", "", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouter_RequestID_Preserved(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/ops/health", http.NoBody)
	req.Header.Set("X-Request-Id", "custom-request-id-123")
	rec := httptest.NewRecorder()
	app.router.ServeHTTP(rec, req)

	assert.Equal(t, "custom-request-id-123", rec.Header().Get("X-Request-Id"))
}

func TestRouter_NotFound(t *testing.T) {
	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/api/nonexistent", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
