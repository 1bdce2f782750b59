package postgres_test

import (
	"context"
	"testing"
	"time"

	costcenterDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/costcenter"
	documentDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/document"
	profileDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/profile"
	"github.com/frahmantamala/docportal/internal/document"
	documentPostgres "github.com/frahmantamala/docportal/internal/document/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestDocumentPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Document Postgres Suite")
}

var _ = Describe("Document Repository", func() {
	var (
		db   *gorm.DB
		repo document.RepositoryAPI
		ctx  context.Context
		cc   *costcenterDatamodel.CostCenter
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(
			&costcenterDatamodel.CostCenter{},
			&profileDatamodel.UserProfile{},
			&documentDatamodel.Document{},
			&documentDatamodel.AccessLog{},
		)).To(Succeed())

		repo = documentPostgres.NewDocumentRepository(db)
		ctx = context.Background()

		cc = &costcenterDatamodel.CostCenter{Name: "Planta Norte", Code: "PLANTA NOR"}
		Expect(db.Create(cc).Error).NotTo(HaveOccurred())
		Expect(db.Create(&profileDatamodel.UserProfile{ID: "w1", Role: "worker", FullName: "Ana", Email: "ana@example.com"}).Error).NotTo(HaveOccurred())
	})

	insert := func(title string, userID, costCenterID *string, at time.Time) {
		Expect(repo.Create(ctx, &documentDatamodel.Document{
			Title: title, FileName: title + ".pdf", FileURL: "u", FileType: "application/pdf",
			UserID: userID, CostCenterID: costCenterID, CreatedAt: at,
		})).To(Succeed())
	}

	It("lists a worker's documents newest first", func() {
		w1, w2 := "w1", "w2"
		now := time.Now()
		insert("old", &w1, nil, now.Add(-time.Hour))
		insert("new", &w1, nil, now)
		insert("theirs", &w2, nil, now)

		rows, err := repo.ListByUser(ctx, "w1")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].Title).To(Equal("new"))
	})

	It("widens to cost center and global documents in shared mode", func() {
		w1, w2, other := "w1", "w2", "nope"
		now := time.Now()
		insert("mine", &w1, nil, now)
		insert("theirs", &w2, nil, now)
		insert("team", nil, &cc.ID, now)
		insert("all", nil, nil, now)

		rows, err := repo.ListShared(ctx, "w1", &cc.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(3))

		rows, err = repo.ListShared(ctx, "w1", &other)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
	})

	It("resolves recipient names for the admin listing", func() {
		w1 := "w1"
		insert("mine", &w1, nil, time.Now())
		insert("team", nil, &cc.ID, time.Now().Add(-time.Minute))

		rows, err := repo.ListAll(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))

		first := document.FromAdminRow(rows[0])
		Expect(first.AssignedToName).To(Equal("Ana"))
		second := document.FromAdminRow(rows[1])
		Expect(second.AssignedToName).To(Equal("Planta Norte"))
		Expect(second.Visibility).To(Equal(document.VisibilityCostCenter))
	})

	It("deletes and records access", func() {
		w1 := "w1"
		insert("mine", &w1, nil, time.Now())
		rows, _ := repo.ListByUser(ctx, "w1")

		Expect(repo.RecordAccess(ctx, &documentDatamodel.AccessLog{DocumentID: rows[0].ID, UserID: "w1"})).To(Succeed())

		deleted, err := repo.Delete(ctx, rows[0].ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted).To(BeTrue())

		row, err := repo.GetByID(ctx, rows[0].ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(row).To(BeNil())
	})
})
