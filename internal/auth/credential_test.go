package auth

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

var _ = ginkgo.Describe("VerifyPassword", func() {
	ginkgo.It("verifies a bcrypt digest against the original password", func() {
		hash, err := HashPassword("abc123", bcrypt.MinCost)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(VerifyPassword(hash, "abc123")).To(gomega.BeTrue())
		gomega.Expect(VerifyPassword(hash, "abc124")).To(gomega.BeFalse())
	})

	ginkgo.It("verifies a legacy plain credential by exact equality", func() {
		gomega.Expect(VerifyPassword("abc123", "abc123")).To(gomega.BeTrue())
		gomega.Expect(VerifyPassword("abc123", "abc12")).To(gomega.BeFalse())
		gomega.Expect(VerifyPassword("abc123", "ABC123")).To(gomega.BeFalse())
	})

	ginkgo.It("never verifies against an empty stored credential", func() {
		gomega.Expect(VerifyPassword("", "")).To(gomega.BeFalse())
		gomega.Expect(VerifyPassword("", "anything")).To(gomega.BeFalse())
	})

	ginkgo.It("treats a stored value with a $2 prefix as bcrypt, not plain text", func() {
		// A malformed bcrypt value must not fall back to equality.
		gomega.Expect(VerifyPassword("$2a$broken", "$2a$broken")).To(gomega.BeFalse())
	})
})

var _ = ginkgo.Describe("HashPassword", func() {
	ginkgo.It("produces a digest VerifyPassword accepts", func() {
		hash, err := HashPassword("secret1", bcrypt.MinCost)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(IsBcryptHash(hash)).To(gomega.BeTrue())
		gomega.Expect(VerifyPassword(hash, "secret1")).To(gomega.BeTrue())
	})

	ginkgo.It("falls back to the default cost when given one out of range", func() {
		hash, err := HashPassword("secret1", 99)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		gomega.Expect(VerifyPassword(hash, "secret1")).To(gomega.BeTrue())
	})
})
