package permission

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/designxcel/storefront/internal/auth"
)

type mockMatrixStore struct {
	entries     map[int64][]Entry
	granted     map[string]bool
	listError   error
	writeError  error
	grantCalls  []string
	lastGranter int64
}

func newMockMatrixStore() *mockMatrixStore {
	return &mockMatrixStore{
		entries: make(map[int64][]Entry),
		granted: make(map[string]bool),
	}
}

func (m *mockMatrixStore) HasPermission(ctx context.Context, userID int64, name string) (bool, error) {
	return m.granted[name], nil
}

func (m *mockMatrixStore) CountGranted(ctx context.Context, userID int64, names []string) (int, error) {
	count := 0
	for _, name := range names {
		if m.granted[name] {
			count++
		}
	}
	return count, nil
}

func (m *mockMatrixStore) Grant(ctx context.Context, userID int64, name string, grantedBy int64) error {
	if !Known(name) {
		return ErrUnknownPermission
	}
	if m.writeError != nil {
		return m.writeError
	}
	m.granted[name] = true
	m.grantCalls = append(m.grantCalls, name)
	m.lastGranter = grantedBy
	return nil
}

func (m *mockMatrixStore) Revoke(ctx context.Context, userID int64, name string) error {
	if !Known(name) {
		return ErrUnknownPermission
	}
	if m.writeError != nil {
		return m.writeError
	}
	m.granted[name] = false
	return nil
}

func (m *mockMatrixStore) ListForUser(ctx context.Context, userID int64) ([]Entry, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.entries[userID], nil
}

func requestWithIdentity(method, target string, identity *auth.Identity) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if identity != nil {
		req = req.WithContext(auth.ContextWithIdentity(req.Context(), identity))
	}
	return req
}

func withURLParams(req *http.Request, params map[string]string) *http.Request {
	routeCtx := chi.NewRouteContext()
	for key, value := range params {
		routeCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func decodeBody(rec *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	gomega.Expect(json.NewDecoder(rec.Body).Decode(&body)).To(gomega.Succeed())
	return body
}

var _ = ginkgo.Describe("Permission Handler", func() {
	var (
		store   *mockMatrixStore
		handler *Handler
	)

	ginkgo.BeforeEach(func() {
		store = newMockMatrixStore()
		handler = NewHandler(store)
	})

	ginkgo.Describe("Capabilities", func() {
		ginkgo.It("requires an authenticated identity", func() {
			rec := httptest.NewRecorder()
			handler.Capabilities(rec, requestWithIdentity(http.MethodGet, "/auth/permissions", nil))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnauthorized))
			gomega.Expect(decodeBody(rec)["code"]).To(gomega.Equal("AUTH_REQUIRED"))
		})

		ginkgo.It("merges granular grants into an employee's payload", func() {
			store.entries[7] = []Entry{
				{Name: Name(SectionContent, ActionUpdate), CanAccess: true},
				{Name: Name(SectionUsers, ActionDelete), CanAccess: false},
			}

			rec := httptest.NewRecorder()
			handler.Capabilities(rec, requestWithIdentity(http.MethodGet, "/auth/permissions", &auth.Identity{
				ID: 7, Role: auth.RoleOrderSupport, Type: auth.UserTypeEmployee,
			}))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			body := decodeBody(rec)
			gomega.Expect(body["role"]).To(gomega.Equal("OrderSupport"))
			gomega.Expect(body["permissions"]).To(gomega.ContainElement(Name(SectionContent, ActionUpdate)))
			gomega.Expect(body["permissions"]).NotTo(gomega.ContainElement(Name(SectionUsers, ActionDelete)))
		})

		ginkgo.It("never consults the matrix for customers", func() {
			store.listError = errors.New("matrix must not be read")

			rec := httptest.NewRecorder()
			handler.Capabilities(rec, requestWithIdentity(http.MethodGet, "/auth/permissions", &auth.Identity{
				ID: 9, Role: auth.RoleCustomer, Type: auth.UserTypeCustomer,
			}))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			body := decodeBody(rec)
			gomega.Expect(body["permissions"]).To(gomega.BeEmpty())
			gomega.Expect(body["sections"]).To(gomega.BeEmpty())
		})

		ginkgo.It("fails with 500 when the matrix is unreachable", func() {
			store.listError = errors.New("connection refused")

			rec := httptest.NewRecorder()
			handler.Capabilities(rec, requestWithIdentity(http.MethodGet, "/auth/permissions", &auth.Identity{
				ID: 7, Role: auth.RoleEmployee, Type: auth.UserTypeEmployee,
			}))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusInternalServerError))
			gomega.Expect(decodeBody(rec)["code"]).To(gomega.Equal("INTERNAL_ERROR"))
		})

		ginkgo.It("gives admins the full catalog", func() {
			rec := httptest.NewRecorder()
			handler.Capabilities(rec, requestWithIdentity(http.MethodGet, "/auth/permissions", &auth.Identity{
				ID: 1, Role: auth.RoleAdmin, Type: auth.UserTypeEmployee,
			}))

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			body := decodeBody(rec)
			gomega.Expect(body["permissions"]).To(gomega.HaveLen(len(AllNames())))
			gomega.Expect(body["sections"]).To(gomega.HaveLen(len(Sections)))
		})
	})

	ginkgo.Describe("ListUserPermissions", func() {
		ginkgo.It("returns the full grid for a user", func() {
			store.entries[42] = []Entry{
				{Name: Name(SectionProducts, ActionView), CanAccess: true},
				{Name: Name(SectionProducts, ActionDelete), CanAccess: false},
			}

			req := withURLParams(requestWithIdentity(http.MethodGet, "/admin/users/42/permissions", nil), map[string]string{"id": "42"})
			rec := httptest.NewRecorder()
			handler.ListUserPermissions(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			body := decodeBody(rec)
			gomega.Expect(body["userId"]).To(gomega.BeEquivalentTo(42))
			gomega.Expect(body["permissions"]).To(gomega.HaveLen(2))
		})

		ginkgo.It("rejects unparseable ids", func() {
			req := withURLParams(requestWithIdentity(http.MethodGet, "/admin/users/abc/permissions", nil), map[string]string{"id": "abc"})
			rec := httptest.NewRecorder()
			handler.ListUserPermissions(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(decodeBody(rec)["code"]).To(gomega.Equal("VALIDATION_FAILED"))
		})

		ginkgo.It("rejects non-positive ids", func() {
			req := withURLParams(requestWithIdentity(http.MethodGet, "/admin/users/0/permissions", nil), map[string]string{"id": "0"})
			rec := httptest.NewRecorder()
			handler.ListUserPermissions(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})

	ginkgo.Describe("GrantPermission", func() {
		ginkgo.It("records the grant with the acting admin's id", func() {
			name := Name(SectionTransactions, ActionView)
			req := withURLParams(requestWithIdentity(http.MethodPut, "/admin/users/42/permissions/"+name, &auth.Identity{
				ID: 1, Role: auth.RoleAdmin, Type: auth.UserTypeEmployee,
			}), map[string]string{"id": "42", "name": name})

			rec := httptest.NewRecorder()
			handler.GrantPermission(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			body := decodeBody(rec)
			gomega.Expect(body["success"]).To(gomega.BeTrue())
			gomega.Expect(body["permission"]).To(gomega.Equal(name))
			gomega.Expect(body["canAccess"]).To(gomega.BeTrue())
			gomega.Expect(store.lastGranter).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("rejects names outside the catalog", func() {
			req := withURLParams(requestWithIdentity(http.MethodPut, "/admin/users/42/permissions/products.canExplode", nil),
				map[string]string{"id": "42", "name": "products.canExplode"})

			rec := httptest.NewRecorder()
			handler.GrantPermission(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(decodeBody(rec)["code"]).To(gomega.Equal("VALIDATION_FAILED"))
			gomega.Expect(store.grantCalls).To(gomega.BeEmpty())
		})

		ginkgo.It("fails with 500 when the store write fails", func() {
			store.writeError = errors.New("connection refused")
			name := Name(SectionUsers, ActionUpdate)
			req := withURLParams(requestWithIdentity(http.MethodPut, "/admin/users/42/permissions/"+name, nil),
				map[string]string{"id": "42", "name": name})

			rec := httptest.NewRecorder()
			handler.GrantPermission(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusInternalServerError))
			gomega.Expect(decodeBody(rec)["code"]).To(gomega.Equal("INTERNAL_ERROR"))
		})
	})

	ginkgo.Describe("RevokePermission", func() {
		ginkgo.It("flips the flag off and reports it", func() {
			name := Name(SectionUsers, ActionUpdate)
			store.granted[name] = true

			req := withURLParams(requestWithIdentity(http.MethodDelete, "/admin/users/42/permissions/"+name, nil),
				map[string]string{"id": "42", "name": name})

			rec := httptest.NewRecorder()
			handler.RevokePermission(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			body := decodeBody(rec)
			gomega.Expect(body["canAccess"]).To(gomega.BeFalse())
			gomega.Expect(store.granted[name]).To(gomega.BeFalse())
		})

		ginkgo.It("rejects names outside the catalog", func() {
			req := withURLParams(requestWithIdentity(http.MethodDelete, "/admin/users/42/permissions/nonsense", nil),
				map[string]string{"id": "42", "name": "nonsense"})

			rec := httptest.NewRecorder()
			handler.RevokePermission(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})
	})
})
