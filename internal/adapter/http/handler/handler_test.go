package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hms-wallet-service/internal/adapter/http/dto"
	"hms-wallet-service/internal/adapter/http/middleware"
	"hms-wallet-service/internal/core/domain"
	"hms-wallet-service/internal/core/ports"
	"hms-wallet-service/internal/core/ports/mocks"
	"hms-wallet-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T, method, target string, body interface{}) (*gin.Context, *httptest.ResponseRecorder, uuid.UUID, uuid.UUID) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	c.Request = httptest.NewRequest(method, target, reader)
	c.Request.Header.Set("Content-Type", "application/json")

	hospitalID := uuid.New()
	userID := uuid.New()
	c.Set(middleware.CtxHospitalID, hospitalID)
	c.Set(middleware.CtxUserID, userID)
	return c, w, hospitalID, userID
}

func testWallet(hospitalID uuid.UUID) *domain.Wallet {
	now := time.Now()
	return &domain.Wallet{
		ID:         uuid.New(),
		HospitalID: hospitalID,
		PatientID:  uuid.New(),
		CardNumber: "1234-5678-9012-3456",
		Balance:    50000,
		Currency:   "UGX",
		Status:     domain.WalletStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// --- Create ---

func TestCreateWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	patientID := uuid.New()
	c, w, hospitalID, userID := newTestContext(t, http.MethodPost, "/", dto.CreateWalletRequest{
		PatientID:      patientID.String(),
		InitialBalance: 10000,
	})

	wallet := testWallet(hospitalID)
	wallet.PatientID = patientID
	wallet.Balance = 10000

	mockLedger.EXPECT().CreateWallet(gomock.Any(), ports.CreateWalletRequest{
		HospitalID:     hospitalID,
		PatientID:      patientID,
		InitialBalance: 10000,
		PerformedBy:    userID,
	}).Return(&ports.WalletDetail{
		Wallet:  *wallet,
		Patient: domain.Patient{ID: patientID, HospitalID: hospitalID, FirstName: "Grace", LastName: "Nakato"},
	}, nil)

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	walletData := data["wallet"].(map[string]interface{})
	assert.Equal(t, wallet.ID.String(), walletData["id"])
	assert.Equal(t, float64(10000), walletData["balance"])
	patientData := data["patient"].(map[string]interface{})
	assert.Equal(t, "Grace Nakato", patientData["full_name"])
}

func TestCreateWallet_ValidationError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	// Missing patient_id => binding error
	c, w, _, _ := newTestContext(t, http.MethodPost, "/", map[string]interface{}{
		"initial_balance": 100,
	})

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateWallet_DuplicateWallet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, _, _ := newTestContext(t, http.MethodPost, "/", dto.CreateWalletRequest{
		PatientID: uuid.New().String(),
	})

	mockLedger.EXPECT().CreateWallet(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrWalletAlreadyExists())

	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCreateWallet_PatientNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, _, _ := newTestContext(t, http.MethodPost, "/", dto.CreateWalletRequest{
		PatientID: uuid.New().String(),
	})

	mockLedger.EXPECT().CreateWallet(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrPatientNotFound())

	h.Create(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateWallet_MissingAuthContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

	h.Create(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// --- TopUp ---

func TestTopUp_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, hospitalID, userID := newTestContext(t, http.MethodPost, "/", dto.TopUpRequest{
		Amount:        20000,
		Description:   "Cash deposit at reception",
		Reference:     "RCPT-2041",
		PaymentMethod: "cash",
	})

	wallet := testWallet(hospitalID)
	c.Params = gin.Params{{Key: "id", Value: wallet.ID.String()}}

	txn := &domain.WalletTransaction{
		ID:           uuid.New(),
		HospitalID:   hospitalID,
		WalletID:     wallet.ID,
		Type:         domain.TransactionTypeCredit,
		Amount:       20000,
		Description:  "Cash deposit at reception",
		Reference:    "RCPT-2041",
		Method:       "cash",
		BalanceAfter: 70000,
		PerformedBy:  userID,
		CreatedAt:    time.Now(),
	}
	wallet.Balance = 70000

	mockLedger.EXPECT().TopUp(gomock.Any(), ports.TopUpRequest{
		HospitalID:  hospitalID,
		WalletID:    wallet.ID,
		Amount:      20000,
		Description: "Cash deposit at reception",
		Reference:   "RCPT-2041",
		Method:      "cash",
		PerformedBy: userID,
	}).Return(&ports.MutationResult{Wallet: wallet, Transaction: txn}, nil)

	h.TopUp(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	walletData := data["wallet"].(map[string]interface{})
	assert.Equal(t, float64(70000), walletData["balance"])
	txnData := data["transaction"].(map[string]interface{})
	assert.Equal(t, "credit", txnData["type"])
	assert.Equal(t, float64(70000), txnData["balance_after"])
}

func TestTopUp_InvalidWalletID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, _, _ := newTestContext(t, http.MethodPost, "/", dto.TopUpRequest{Amount: 100})
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.TopUp(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTopUp_ZeroAmountRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, _, _ := newTestContext(t, http.MethodPost, "/", map[string]interface{}{
		"amount": 0,
	})
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	h.TopUp(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTopUp_SuspendedWallet(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, _, _ := newTestContext(t, http.MethodPost, "/", dto.TopUpRequest{Amount: 100})
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	mockLedger.EXPECT().TopUp(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrWalletNotActive())

	h.TopUp(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

// --- Deduct ---

func TestDeduct_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, hospitalID, userID := newTestContext(t, http.MethodPost, "/", dto.DeductRequest{
		Amount:      15000,
		Description: "Lab tests",
		Reference:   "INV-8812",
	})

	wallet := testWallet(hospitalID)
	c.Params = gin.Params{{Key: "id", Value: wallet.ID.String()}}
	wallet.Balance = 35000

	txn := &domain.WalletTransaction{
		ID:           uuid.New(),
		HospitalID:   hospitalID,
		WalletID:     wallet.ID,
		Type:         domain.TransactionTypeDebit,
		Amount:       15000,
		Description:  "Lab tests",
		Reference:    "INV-8812",
		BalanceAfter: 35000,
		PerformedBy:  userID,
		CreatedAt:    time.Now(),
	}

	mockLedger.EXPECT().Deduct(gomock.Any(), ports.DeductRequest{
		HospitalID:  hospitalID,
		WalletID:    wallet.ID,
		Amount:      15000,
		Description: "Lab tests",
		Reference:   "INV-8812",
		PerformedBy: userID,
	}).Return(&ports.MutationResult{Wallet: wallet, Transaction: txn}, nil)

	h.Deduct(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	txnData := data["transaction"].(map[string]interface{})
	assert.Equal(t, "debit", txnData["type"])
}

func TestDeduct_InsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, _, _ := newTestContext(t, http.MethodPost, "/", dto.DeductRequest{Amount: 999999})
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	mockLedger.EXPECT().Deduct(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInsufficientBalance())

	h.Deduct(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestDeduct_WalletNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, _, _ := newTestContext(t, http.MethodPost, "/", dto.DeductRequest{Amount: 100})
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	mockLedger.EXPECT().Deduct(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrWalletNotFound())

	h.Deduct(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- SetStatus ---

func TestSetStatus_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, hospitalID, userID := newTestContext(t, http.MethodPatch, "/", dto.SetStatusRequest{Status: "suspended"})

	wallet := testWallet(hospitalID)
	c.Params = gin.Params{{Key: "id", Value: wallet.ID.String()}}
	wallet.Status = domain.WalletStatusSuspended

	mockLedger.EXPECT().SetStatus(gomock.Any(), ports.SetStatusRequest{
		HospitalID:  hospitalID,
		WalletID:    wallet.ID,
		Status:      "suspended",
		PerformedBy: userID,
	}).Return(wallet, nil)

	h.SetStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "suspended", data["status"])
}

func TestSetStatus_InvalidStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, _, _ := newTestContext(t, http.MethodPatch, "/", dto.SetStatusRequest{Status: "frozen"})
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	mockLedger.EXPECT().SetStatus(gomock.Any(), gomock.Any()).Return(nil, apperror.ErrInvalidStatus())

	h.SetStatus(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- Get / GetByPatient ---

func TestGetWallet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, hospitalID, _ := newTestContext(t, http.MethodGet, "/", nil)

	wallet := testWallet(hospitalID)
	c.Params = gin.Params{{Key: "id", Value: wallet.ID.String()}}

	mockLedger.EXPECT().GetWallet(gomock.Any(), hospitalID, wallet.ID).Return(&ports.WalletDetail{
		Wallet:  *wallet,
		Patient: domain.Patient{ID: wallet.PatientID, FirstName: "John", LastName: "Okello"},
		Transactions: []domain.WalletTransaction{
			{ID: uuid.New(), WalletID: wallet.ID, Type: domain.TransactionTypeCredit, Amount: 50000, BalanceAfter: 50000, CreatedAt: time.Now()},
		},
	}, nil)

	h.Get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	txns := data["transactions"].([]interface{})
	assert.Len(t, txns, 1)
}

func TestGetWallet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, hospitalID, _ := newTestContext(t, http.MethodGet, "/", nil)
	walletID := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	mockLedger.EXPECT().GetWallet(gomock.Any(), hospitalID, walletID).Return(nil, apperror.ErrWalletNotFound())

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetByPatient_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, hospitalID, _ := newTestContext(t, http.MethodGet, "/", nil)

	wallet := testWallet(hospitalID)
	c.Params = gin.Params{{Key: "patientId", Value: wallet.PatientID.String()}}

	mockLedger.EXPECT().GetWalletByPatient(gomock.Any(), hospitalID, wallet.PatientID).Return(&ports.WalletDetail{
		Wallet:  *wallet,
		Patient: domain.Patient{ID: wallet.PatientID, FirstName: "Mary", LastName: "Achieng"},
	}, nil)

	h.GetByPatient(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

// --- List ---

func TestListWallets_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, hospitalID, _ := newTestContext(t, http.MethodGet, "/?search=okello&status=active", nil)

	wallet := testWallet(hospitalID)
	active := domain.WalletStatusActive
	mockLedger.EXPECT().ListWallets(gomock.Any(), ports.WalletListParams{
		HospitalID: hospitalID,
		Search:     "okello",
		Status:     &active,
	}).Return([]ports.WalletWithPatient{
		{Wallet: *wallet, Patient: domain.Patient{ID: wallet.PatientID, FirstName: "John", LastName: "Okello"}},
	}, nil)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, float64(1), data["total"])
}

func TestListWallets_InvalidStatusFilter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, _, _ := newTestContext(t, http.MethodGet, "/?status=closed", nil)

	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// --- ListTransactions ---

func TestListTransactions_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, hospitalID, _ := newTestContext(t, http.MethodGet, "/?limit=20&offset=0", nil)
	walletID := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	mockLedger.EXPECT().ListTransactions(gomock.Any(), ports.ListTransactionsParams{
		HospitalID: hospitalID,
		WalletID:   walletID,
		Limit:      20,
		Offset:     0,
	}).Return(&ports.TransactionPage{
		Items: []domain.WalletTransaction{
			{ID: uuid.New(), WalletID: walletID, Type: domain.TransactionTypeDebit, Amount: 3000, BalanceAfter: 47000, CreatedAt: time.Now()},
		},
		Total:  41,
		Limit:  20,
		Offset: 0,
	}, nil)

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	items := data["items"].([]interface{})
	assert.Len(t, items, 1)
	assert.Equal(t, float64(41), data["total"])
	assert.Equal(t, float64(3), data["total_pages"])
}

func TestListTransactions_DefaultLimitEchoed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, hospitalID, _ := newTestContext(t, http.MethodGet, "/", nil)
	walletID := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: walletID.String()}}

	// No limit in the query: the service applies its default and the response
	// must report the limit actually used, not the raw zero.
	mockLedger.EXPECT().ListTransactions(gomock.Any(), ports.ListTransactionsParams{
		HospitalID: hospitalID,
		WalletID:   walletID,
	}).Return(&ports.TransactionPage{
		Items:  []domain.WalletTransaction{},
		Total:  75,
		Limit:  50,
		Offset: 0,
	}, nil)

	h.ListTransactions(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(50), data["limit"])
	assert.Equal(t, float64(75), data["total"])
	assert.Equal(t, float64(2), data["total_pages"])
}

// --- GetStats ---

func TestGetStats_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, hospitalID, _ := newTestContext(t, http.MethodGet, "/", nil)

	mockLedger.EXPECT().GetStats(gomock.Any(), hospitalID).Return(&ports.WalletStats{
		TotalWallets:      12,
		TotalBalance:      480000,
		TotalTransactions: 230,
		TotalCredits:      900000,
		TotalDebits:       420000,
	}, nil)

	h.GetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(12), data["total_wallets"])
	assert.Equal(t, float64(480000), data["total_balance"])
}

func TestGetStats_StorageError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewWalletHandler(mockLedger)

	c, w, hospitalID, _ := newTestContext(t, http.MethodGet, "/", nil)

	mockLedger.EXPECT().GetStats(gomock.Any(), hospitalID).Return(nil, apperror.ErrStorage(errors.New("db down")))

	h.GetStats(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// --- Health Check ---

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Ping(_ context.Context) error { return f.err }
func (f fakeChecker) Name() string                 { return f.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis"})(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
}

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(fakeChecker{name: "postgresql"}, fakeChecker{name: "redis", err: errors.New("connection refused")})(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]interface{})
	redisDep := deps["redis"].(map[string]interface{})
	assert.Equal(t, "unhealthy", redisDep["status"])
}
