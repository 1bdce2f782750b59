package matcher_test

import (
	"testing"

	"github.com/frahmantamala/docportal/internal/matcher"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMatcher(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Matcher Suite")
}

var _ = Describe("Normalize", func() {
	It("lowercases, strips accents and punctuation", func() {
		Expect(matcher.Normalize("José Pérez_Núñez-2024.PDF")).To(Equal("josepereznunez2024pdf"))
	})

	It("keeps digits", func() {
		Expect(matcher.Normalize("Factura 2024")).To(Equal("factura2024"))
	})

	It("returns empty for symbol-only input", func() {
		Expect(matcher.Normalize("__--..")).To(BeEmpty())
	})
})

var _ = Describe("Match", func() {
	var workers []matcher.Candidate

	BeforeEach(func() {
		workers = []matcher.Candidate{
			{ID: "w1", FullName: "Juan Perez"},
			{ID: "w2", FullName: "María José González"},
			{ID: "w3", FullName: "Pedro Soto Rojas"},
		}
	})

	It("matches a file containing the full name", func() {
		c, ok := matcher.Match("Juan_Perez_contrato.pdf", workers)
		Expect(ok).To(BeTrue())
		Expect(c.ID).To(Equal("w1"))
	})

	It("returns no match when nothing overlaps", func() {
		_, ok := matcher.Match("factura_2024.pdf", workers)
		Expect(ok).To(BeFalse())
	})

	It("ignores accents on either side", func() {
		c, ok := matcher.Match("liquidacion maria jose gonzalez.pdf", workers)
		Expect(ok).To(BeTrue())
		Expect(c.ID).To(Equal("w2"))
	})

	It("returns the first exact containment in candidate order", func() {
		dupes := []matcher.Candidate{
			{ID: "a", FullName: "Ana Diaz"},
			{ID: "b", FullName: "Ana Diaz"},
		}
		c, ok := matcher.Match("ana_diaz.pdf", dupes)
		Expect(ok).To(BeTrue())
		Expect(c.ID).To(Equal("a"))
	})

	It("matches when the normalized file name is contained in the worker name", func() {
		c, ok := matcher.Match("Soto.pdf", []matcher.Candidate{{ID: "x", FullName: "Pedro Sotopdf Rojas"}})
		Expect(ok).To(BeTrue())
		Expect(c.ID).To(Equal("x"))
	})

	It("scores first and last name concatenation", func() {
		c, ok := matcher.Match("2024_pedrosoto_liquidacion.pdf", workers)
		Expect(ok).To(BeTrue())
		Expect(c.ID).To(Equal("w3"))
	})

	It("scores multi-token overlap when tokens are not adjacent", func() {
		c, ok := matcher.Match("rojas-informe-pedro.pdf", workers)
		Expect(ok).To(BeTrue())
		Expect(c.ID).To(Equal("w3"))
	})

	It("requires at least two tokens for the multi-token score", func() {
		_, ok := matcher.Match("rojas_informe.pdf", workers)
		Expect(ok).To(BeFalse())
	})

	It("ignores tokens shorter than three characters", func() {
		_, ok := matcher.Match("li_rojas_report.pdf", []matcher.Candidate{{ID: "z", FullName: "Ana Li Rojas"}})
		Expect(ok).To(BeFalse())
	})

	It("prefers the higher score", func() {
		candidates := []matcher.Candidate{
			{ID: "low", FullName: "Ana Maria Rojas"},
			{ID: "high", FullName: "Carolina Andrea Fuentes"},
		}
		// low: tokens ana,maria,rojas -> ana and rojas match = 20
		// high: carolina,andrea,fuentes all match = 30
		c, ok := matcher.Match("carolina-ana-andrea-fuentes-rojas.pdf", candidates)
		Expect(ok).To(BeTrue())
		Expect(c.ID).To(Equal("high"))
	})

	It("keeps the earlier candidate on a score tie", func() {
		candidates := []matcher.Candidate{
			{ID: "first", FullName: "Luis Mora Vega"},
			{ID: "second", FullName: "Luis Mora Diaz"},
		}
		c, ok := matcher.Match("vega_diaz_luis.pdf", candidates)
		Expect(ok).To(BeTrue())
		Expect(c.ID).To(Equal("first"))
	})

	It("never matches candidates whose name normalizes to nothing", func() {
		_, ok := matcher.Match("anything.pdf", []matcher.Candidate{{ID: "e", FullName: "  --  "}})
		Expect(ok).To(BeFalse())
	})

	It("returns no match for an empty candidate list", func() {
		_, ok := matcher.Match("Juan_Perez.pdf", nil)
		Expect(ok).To(BeFalse())
	})
})
