package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"coinhub/internal/auth"
	"coinhub/internal/config"
	"coinhub/internal/handler"
	"coinhub/internal/metrics"
	"coinhub/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type apiClient struct {
	e *echo.Echo
}

func (c apiClient) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var payload *strings.Reader
	if body == nil {
		payload = strings.NewReader("")
	} else {
		raw, err := json.Marshal(body)
		Expect(err).NotTo(HaveOccurred())
		payload = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, payload)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)
	return rec
}

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed(), rec.Body.String())
	return out
}

func (c apiClient) register(email string) (string, uint) {
	rec := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": "Abcdef1!", "firstName": "A", "lastName": "B",
	})
	Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
	body := decode(rec)
	user := body["user"].(map[string]any)
	return body["accessToken"].(string), uint(user["id"].(float64))
}

func newAPI(environment string) (apiClient, *metrics.Metrics) {
	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	Expect(err).NotTo(HaveOccurred())

	store := newMemStore()
	users := memUsers{store}
	accounts := memAccounts{store}
	categories := memCategories{store}
	transactions := memTransactions{store}
	m := metrics.New()

	cfg := &config.Config{Environment: environment, FrontendURL: "http://localhost:3000", BodyLimit: "10K"}
	e := echo.New()
	Register(e, cfg, m, tokens, Handlers{
		Auth:        handler.NewAuthHandler(service.NewAuthService(users, tokens, service.WithAuthObserver(m.ObserveAuth))),
		User:        handler.NewUserHandler(service.NewUserService(users, nil)),
		Account:     handler.NewAccountHandler(service.NewAccountService(accounts)),
		Category:    handler.NewCategoryHandler(service.NewCategoryService(categories)),
		Transaction: handler.NewTransactionHandler(service.NewTransactionService(transactions, accounts, categories)),
	})
	return apiClient{e: e}, m
}

var _ = Describe("error detail", func() {
	failing := func(environment string) apiClient {
		client, _ := newAPI(environment)
		client.e.GET("/boom", func(echo.Context) error {
			return errors.New("dial tcp 10.0.0.5:3306: connection refused")
		})
		return client
	}

	It("hides internal errors in production", func() {
		rec := failing("production").do(http.MethodGet, "/boom", "", nil)
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(decode(rec)).To(Equal(map[string]any{"message": "Internal Server Error"}))
		Expect(rec.Body.String()).NotTo(ContainSubstring("10.0.0.5"))
	})

	It("shows them during development", func() {
		rec := failing("development").do(http.MethodGet, "/boom", "", nil)
		Expect(rec.Code).To(Equal(http.StatusInternalServerError))
		Expect(rec.Body.String()).To(ContainSubstring("connection refused"))
	})

	It("keeps mapped error bodies identical in both modes", func() {
		prod := failing("production").do(http.MethodGet, "/api/accounts", "", nil)
		dev := failing("development").do(http.MethodGet, "/api/accounts", "", nil)
		Expect(prod.Body.String()).To(Equal(dev.Body.String()))
	})
})

var _ = Describe("API", func() {
	var (
		client apiClient
		m      *metrics.Metrics
	)

	BeforeEach(func() {
		client, m = newAPI("development")
	})

	It("reports health", func() {
		rec := client.do(http.MethodGet, "/health", "", nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)).To(HaveKeyWithValue("status", "ok"))
	})

	Describe("authentication", func() {
		It("registers and verifies the issued token", func() {
			rec := client.do(http.MethodPost, "/api/auth/register", "", map[string]string{
				"email": "a@b.com", "password": "Abcdef1!", "firstName": "A", "lastName": "B",
			})
			Expect(rec.Code).To(Equal(http.StatusCreated))
			body := decode(rec)
			Expect(body).To(HaveKeyWithValue("message", "User registered successfully"))
			Expect(body["user"]).To(Equal(map[string]any{"id": 1.0, "email": "a@b.com"}))
			Expect(rec.Body.String()).NotTo(ContainSubstring("argon2"))

			verify := client.do(http.MethodGet, "/api/auth/verify", body["accessToken"].(string), nil)
			Expect(verify.Code).To(Equal(http.StatusOK))
			Expect(decode(verify)).To(Equal(map[string]any{
				"message": "Token is valid",
				"user":    map[string]any{"id": 1.0},
			}))
		})

		It("logs in with the registered credentials", func() {
			client.register("a@b.com")

			rec := client.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "A@B.com", "password": "Abcdef1!"})
			Expect(rec.Code).To(Equal(http.StatusOK))
			body := decode(rec)
			Expect(body).To(HaveKeyWithValue("message", "Login successful"))
			Expect(body["accessToken"]).NotTo(BeEmpty())
			Expect(testutil.ToFloat64(m.AuthAttempts.WithLabelValues("login", "success"))).To(Equal(1.0))
		})

		It("answers a wrong password and an unknown email identically", func() {
			client.register("a@b.com")

			wrong := client.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "a@b.com", "password": "Wrong-pass1"})
			unknown := client.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": "nobody@b.com", "password": "Abcdef1!"})

			Expect(wrong.Code).To(Equal(http.StatusUnauthorized))
			Expect(unknown.Code).To(Equal(http.StatusUnauthorized))
			Expect(wrong.Body.String()).To(Equal(unknown.Body.String()))
			Expect(decode(wrong)).To(HaveKeyWithValue("error", "Invalid credentials"))
		})

		It("rejects a second registration of the same email", func() {
			client.register("a@b.com")
			rec := client.do(http.MethodPost, "/api/auth/register", "", map[string]string{
				"email": "a@b.com", "password": "Abcdef1!", "firstName": "C", "lastName": "D",
			})
			Expect(rec.Code).To(Equal(http.StatusConflict))
		})

		DescribeTable("rejects invalid registrations",
			func(payload map[string]string, wantError string) {
				rec := client.do(http.MethodPost, "/api/auth/register", "", payload)
				Expect(rec.Code).To(Equal(http.StatusBadRequest))
				Expect(decode(rec)).To(HaveKeyWithValue("error", wantError))
			},
			Entry("missing password", map[string]string{"email": "a@b.com", "firstName": "A", "lastName": "B"}, "password is required"),
			Entry("bad email", map[string]string{"email": "not-an-email", "password": "Abcdef1!", "firstName": "A", "lastName": "B"}, "Invalid email format"),
		)

		DescribeTable("guards protected routes",
			func(header, wantError string) {
				req := httptest.NewRequest(http.MethodGet, "/api/accounts", nil)
				if header != "" {
					req.Header.Set(echo.HeaderAuthorization, header)
				}
				rec := httptest.NewRecorder()
				client.e.ServeHTTP(rec, req)
				Expect(rec.Code).To(Equal(http.StatusUnauthorized))
				Expect(decode(rec)).To(HaveKeyWithValue("error", wantError))
			},
			Entry("missing header", "", "Authentication required"),
			Entry("basic scheme", "Basic YTpi", "Invalid authorization format"),
			Entry("garbage token", "Bearer not.a.jwt", "Invalid token"),
		)
	})

	Describe("ownership", func() {
		var (
			aliceToken, bobToken string
			aliceID, bobID       uint
			accountPath          string
		)

		BeforeEach(func() {
			aliceToken, aliceID = client.register("alice@b.com")
			bobToken, bobID = client.register("bob@b.com")

			rec := client.do(http.MethodPost, "/api/accounts", aliceToken, map[string]any{
				"name": "Compte courant", "initialBalance": 100, "currency": "EUR",
			})
			Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())
			account := decode(rec)["account"].(map[string]any)
			accountPath = fmt.Sprintf("/api/accounts/%d", uint(account["id"].(float64)))
		})

		It("lets the owner read the account", func() {
			rec := client.do(http.MethodGet, accountPath, aliceToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("forbids another user from touching the account", func() {
			for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
				rec := client.do(method, accountPath, bobToken, map[string]any{"name": "mine"})
				Expect(rec.Code).To(Equal(http.StatusForbidden), method)
			}
			Expect(client.do(http.MethodGet, accountPath, aliceToken, nil).Code).To(Equal(http.StatusOK))
		})

		It("keeps user profiles private", func() {
			Expect(client.do(http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), aliceToken, nil).Code).To(Equal(http.StatusOK))
			Expect(client.do(http.MethodGet, fmt.Sprintf("/api/users/%d", aliceID), bobToken, nil).Code).To(Equal(http.StatusForbidden))
			Expect(client.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", bobID), aliceToken, nil).Code).To(Equal(http.StatusForbidden))
		})

		It("books transactions against the balance", func() {
			rec := client.do(http.MethodGet, "/api/categories", aliceToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			categories := decode(rec)["categories"].([]any)
			Expect(categories).NotTo(BeEmpty())
			categoryID := categories[0].(map[string]any)["id"]

			accountID := strings.TrimPrefix(accountPath, "/api/accounts/")
			var account uint
			_, err := fmt.Sscan(accountID, &account)
			Expect(err).NotTo(HaveOccurred())

			rec = client.do(http.MethodPost, "/api/transactions", aliceToken, map[string]any{
				"isIncome": false, "amount": 30.5, "date": "2026-01-15",
				"accountId": account, "categoryId": categoryID,
			})
			Expect(rec.Code).To(Equal(http.StatusCreated), rec.Body.String())

			rec = client.do(http.MethodGet, accountPath+"/balance", aliceToken, nil)
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(decode(rec)).To(HaveKeyWithValue("balance", "69.50"))

			rec = client.do(http.MethodPost, "/api/transactions", bobToken, map[string]any{
				"isIncome": true, "amount": 10, "date": "2026-01-15",
				"accountId": account, "categoryId": categoryID,
			})
			Expect(rec.Code).To(Equal(http.StatusForbidden))
		})

		It("rejects a malformed resource id", func() {
			rec := client.do(http.MethodGet, "/api/accounts/abc", aliceToken, nil)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(rec)).To(HaveKeyWithValue("error", "Invalid account ID"))
		})
	})
})
