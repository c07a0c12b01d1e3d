package auth

import (
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/designxcel/storefront/internal"
)

var _ = ginkgo.Describe("Token Codec", func() {
	var (
		codec    *Codec
		identity Identity
	)

	ginkgo.BeforeEach(func() {
		codec = testCodec()
		identity = Identity{
			ID:       42,
			Email:    "staff@example.com",
			Role:     RoleUserManager,
			Type:     UserTypeEmployee,
			FullName: "Uma Accounts",
		}
	})

	ginkgo.Describe("access tokens", func() {
		ginkgo.It("round-trips identity through generate and verify", func() {
			token, err := codec.GenerateAccessToken(identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := codec.VerifyAccessToken(token)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(42)))
			gomega.Expect(claims.Email).To(gomega.Equal("staff@example.com"))
			gomega.Expect(claims.Role).To(gomega.Equal(RoleUserManager))
			gomega.Expect(claims.Type).To(gomega.Equal(UserTypeEmployee))
			gomega.Expect(claims.IsRefresh()).To(gomega.BeFalse())
		})

		ginkgo.It("reports expired tokens with the expiry sentinel", func() {
			expired := &Codec{
				secret:          []byte("test-secret-key-that-is-long-enough!"),
				issuer:          "designxcel-storefront",
				audience:        "designxcel-clients",
				accessTokenTTL:  -time.Second,
				refreshTokenTTL: time.Hour,
			}

			token, err := expired.GenerateAccessToken(identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = codec.VerifyAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrTokenExpired))
		})

		ginkgo.It("rejects tokens signed with a different secret", func() {
			other := NewCodec(internal.SecurityConfig{
				JWTSecret:     "another-secret-key-that-is-long-enough",
				TokenIssuer:   "designxcel-storefront",
				TokenAudience: "designxcel-clients",
			})

			token, err := other.GenerateAccessToken(identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = codec.VerifyAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("rejects tokens from a different issuer", func() {
			other := NewCodec(internal.SecurityConfig{
				JWTSecret:     "test-secret-key-that-is-long-enough!",
				TokenIssuer:   "someone-else",
				TokenAudience: "designxcel-clients",
			})

			token, err := other.GenerateAccessToken(identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = codec.VerifyAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("rejects tampered tokens", func() {
			token, err := codec.GenerateAccessToken(identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = codec.VerifyAccessToken(token + "x")
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("rejects a refresh token where an access token is expected", func() {
			token, err := codec.GenerateRefreshToken(identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = codec.VerifyAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(ErrNotAccessToken))
		})
	})

	ginkgo.Describe("refresh tokens", func() {
		ginkgo.It("omits role so stale authorization data cannot ride a refresh", func() {
			token, err := codec.GenerateRefreshToken(identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := codec.VerifyToken(token)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.IsRefresh()).To(gomega.BeTrue())
			gomega.Expect(claims.Role).To(gomega.BeEmpty())
		})

		ginkgo.It("mints a new access token from the re-supplied identity", func() {
			token, err := codec.GenerateRefreshToken(identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			promoted := identity
			promoted.Role = RoleAdmin

			accessToken, err := codec.RefreshAccessToken(token, promoted)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims, err := codec.VerifyAccessToken(accessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(claims.Role).To(gomega.Equal(RoleAdmin))
		})

		ginkgo.It("rejects a refresh for a different user than the token subject", func() {
			token, err := codec.GenerateRefreshToken(identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			other := identity
			other.ID = 99

			_, err = codec.RefreshAccessToken(token, other)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("rejects an access token in the refresh slot", func() {
			token, err := codec.GenerateAccessToken(identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = codec.RefreshAccessToken(token, identity)
			gomega.Expect(err).To(gomega.MatchError(ErrNotRefreshToken))
		})
	})

	ginkgo.Describe("DecodeToken", func() {
		ginkgo.It("reads claims without verifying the signature", func() {
			other := NewCodec(internal.SecurityConfig{
				JWTSecret:     "another-secret-key-that-is-long-enough",
				TokenIssuer:   "designxcel-storefront",
				TokenAudience: "designxcel-clients",
			})
			token, err := other.GenerateAccessToken(identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			claims := codec.DecodeToken(token)
			gomega.Expect(claims).NotTo(gomega.BeNil())
			gomega.Expect(claims.UserID).To(gomega.Equal(int64(42)))
		})

		ginkgo.It("returns nil for garbage", func() {
			gomega.Expect(codec.DecodeToken("garbage")).To(gomega.BeNil())
		})
	})

	ginkgo.Describe("expiry helpers", func() {
		ginkgo.It("treats malformed tokens as expired", func() {
			gomega.Expect(codec.IsTokenExpired("garbage")).To(gomega.BeTrue())
			gomega.Expect(codec.TokenExpiration("garbage")).To(gomega.BeNil())
		})

		ginkgo.It("reports a future expiry for fresh tokens", func() {
			token, err := codec.GenerateAccessToken(identity)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			gomega.Expect(codec.IsTokenExpired(token)).To(gomega.BeFalse())
			exp := codec.TokenExpiration(token)
			gomega.Expect(exp).NotTo(gomega.BeNil())
			gomega.Expect(exp.After(time.Now())).To(gomega.BeTrue())
		})
	})
})
