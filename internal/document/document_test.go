package document_test

import (
	"github.com/frahmantamala/docportal/internal/document"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IsPDF", func() {
	DescribeTable("accepts only pdf files",
		func(name, contentType string, want bool) {
			Expect(document.IsPDF(name, contentType)).To(Equal(want))
		},
		Entry("pdf", "contrato.pdf", "application/pdf", true),
		Entry("upper case extension", "CONTRATO.PDF", "application/pdf", true),
		Entry("type with parameters", "a.pdf", "application/pdf; charset=binary", true),
		Entry("no type", "a.pdf", "", true),
		Entry("generic binary", "a.pdf", "application/octet-stream", true),
		Entry("image renamed to pdf", "photo.pdf", "image/jpeg", false),
		Entry("executable sent as pdf", "x.exe", "application/pdf", false),
		Entry("png", "foto.png", "image/png", false),
	)
})
