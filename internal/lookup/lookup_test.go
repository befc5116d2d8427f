package lookup_test

import (
	"testing"

	"github.com/lazypos/admin-api/internal"
	"github.com/lazypos/admin-api/internal/lookup"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLookup(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Lookup Suite")
}

type row struct {
	ID       int64
	Code     string
	Name     string
	Priority int
}

var _ = Describe("FieldSet", func() {
	var (
		fields *lookup.FieldSet[row]
		rows   []row
	)

	BeforeEach(func() {
		fields = lookup.NewFieldSet(func(r row) int64 { return r.ID }).
			Register("code", func(r row) any { return r.Code }).
			Register("name", func(r row) any { return r.Name }).
			Register("priority", func(r row) any { return r.Priority })

		rows = []row{
			{ID: 1, Code: "HR", Name: "Human Resources", Priority: 3},
			{ID: 2, Code: "FIN", Name: "Finance", Priority: 1},
			{ID: 3, Code: "OPS", Name: "Operations", Priority: 2},
			{ID: 4, Code: "HR", Name: "Human Resources", Priority: 3},
		}
	})

	Describe("Lookup", func() {
		It("should return a deduplicated sorted projection", func() {
			values, err := fields.Lookup(rows, "code", "", "", 1, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"FIN", "HR", "OPS"}))
		})

		It("should filter by exact value case-insensitively", func() {
			values, err := fields.Lookup(rows, "code", "hr", "", 1, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"HR"}))
		})

		It("should fall back to numeric comparison for int properties", func() {
			values, err := fields.Lookup(rows, "priority", "2", "", 1, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"2"}))
		})

		It("should apply the search prefix", func() {
			values, err := fields.Lookup(rows, "name", "", "hum", 1, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"Human Resources"}))
		})

		It("should join a semicolon-delimited property list", func() {
			values, err := fields.Lookup(rows, "code;name", "FIN", "", 1, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"FIN Finance"}))
		})

		It("should page results", func() {
			values, err := fields.Lookup(rows, "code", "", "", 2, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"OPS"}))
		})

		It("should return an empty page past the end", func() {
			values, err := fields.Lookup(rows, "code", "", "", 5, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(BeEmpty())
		})

		It("should reject unknown properties", func() {
			_, err := fields.Lookup(rows, "password", "", "", 1, 10)
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUnknownProperty))
		})
	})

	Describe("Exists", func() {
		It("should find rows with a matching value", func() {
			exists, err := fields.Exists(rows, "code", "FIN", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("should exclude the given row id", func() {
			exists, err := fields.Exists(rows, "code", "FIN", 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("should still match duplicates on other rows", func() {
			exists, err := fields.Exists(rows, "code", "HR", 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("should use the numeric fallback", func() {
			exists, err := fields.Exists(rows, "priority", "1", 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeTrue())
		})

		It("should reject unknown properties", func() {
			_, err := fields.Exists(rows, "secret", "x", 0)
			Expect(err).To(HaveOccurred())
		})
	})
})
