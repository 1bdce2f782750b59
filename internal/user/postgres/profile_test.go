package postgres_test

import (
	"context"
	"testing"
	"time"

	costcenterDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/costcenter"
	profileDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/profile"
	"github.com/frahmantamala/docportal/internal/user"
	userPostgres "github.com/frahmantamala/docportal/internal/user/postgres"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestUserPostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Postgres Suite")
}

var _ = Describe("Profile Repository", func() {
	var (
		db   *gorm.DB
		repo user.RepositoryAPI
		ctx  context.Context
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&costcenterDatamodel.CostCenter{}, &profileDatamodel.UserProfile{})).To(Succeed())

		repo = userPostgres.NewProfileRepository(db)
		ctx = context.Background()
	})

	seed := func(id, role, name string, cc *string) {
		Expect(repo.Create(ctx, &profileDatamodel.UserProfile{
			ID: id, Role: role, FullName: name, Email: id + "@example.com", CostCenterID: cc,
		})).To(Succeed())
	}

	It("lists profiles of one role with their cost center name", func() {
		cc := &costcenterDatamodel.CostCenter{Name: "Planta Norte", Code: "PLANTA NOR"}
		Expect(db.Create(cc).Error).NotTo(HaveOccurred())

		seed("w2", "worker", "Zoe", nil)
		seed("w1", "worker", "Ana", &cc.ID)
		seed("a1", "admin", "Boss", nil)

		rows, err := repo.ListByRole(ctx, "worker")
		Expect(err).NotTo(HaveOccurred())
		Expect(rows).To(HaveLen(2))
		Expect(rows[0].FullName).To(Equal("Ana"))
		Expect(rows[0].CostCenterName).To(HaveValue(Equal("Planta Norte")))
		Expect(rows[1].CostCenterName).To(BeNil())
	})

	It("updates only rows with the requested role", func() {
		seed("a1", "admin", "Boss", nil)

		updated, err := repo.Update(ctx, "a1", "worker", map[string]interface{}{"full_name": "X", "updated_at": time.Now()})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated).To(BeFalse())

		updated, err = repo.Update(ctx, "a1", "admin", map[string]interface{}{"full_name": "X", "phone": (*string)(nil)})
		Expect(err).NotTo(HaveOccurred())
		Expect(updated).To(BeTrue())

		row, err := repo.GetByID(ctx, "a1")
		Expect(err).NotTo(HaveOccurred())
		Expect(row.FullName).To(Equal("X"))
	})

	It("deletes by id and role", func() {
		seed("w1", "worker", "Ana", nil)

		deleted, err := repo.Delete(ctx, "w1", "admin")
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted).To(BeFalse())

		deleted, err = repo.Delete(ctx, "w1", "worker")
		Expect(err).NotTo(HaveOccurred())
		Expect(deleted).To(BeTrue())

		row, err := repo.GetByID(ctx, "w1")
		Expect(err).NotTo(HaveOccurred())
		Expect(row).To(BeNil())
	})
})
