package company_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/frahmantamala/docportal/internal"
	"github.com/frahmantamala/docportal/internal/company"
	companyPostgres "github.com/frahmantamala/docportal/internal/company/postgres"
	companyDatamodel "github.com/frahmantamala/docportal/internal/core/datamodel/company"
	"github.com/frahmantamala/docportal/internal/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCompany(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Company Suite")
}

type memoryCache struct {
	value       *company.Settings
	invalidated int
}

func (c *memoryCache) Get(context.Context) (*company.Settings, error) { return c.value, nil }

func (c *memoryCache) Set(_ context.Context, s *company.Settings) error {
	c.value = s
	return nil
}

func (c *memoryCache) Invalidate(context.Context) error {
	c.value = nil
	c.invalidated++
	return nil
}

func pngBytes(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("Company settings", func() {
	var (
		db    *gorm.DB
		fs    afero.Fs
		cache *memoryCache
		svc   *company.Service
		ctx   context.Context
		admin = &internal.Principal{UserID: "admin-1", Role: internal.RoleAdmin}
	)

	validUpdate := func() company.UpdateSettingsDTO {
		return company.UpdateSettingsDTO{
			Name:                    "Constructora Andes",
			PrimaryColor:            "#10b981",
			BackgroundGradientStart: "#FFFFFF",
			BackgroundGradientEnd:   "#000000",
			ButtonColor:             "#123ABC",
		}
	}

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(db.AutoMigrate(&companyDatamodel.Settings{})).To(Succeed())

		fs = afero.NewMemMapFs()
		cache = &memoryCache{}
		svc = company.NewService(
			companyPostgres.NewSettingsRepository(db),
			cache,
			storage.NewStore(fs, "http://localhost:8080/files/company-logos"),
			nil,
			slogger,
		)
		ctx = context.Background()
	})

	It("returns defaults when nothing has been saved", func() {
		s, err := svc.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name).To(Equal("Sistema Documental"))
		Expect(s.PrimaryColor).To(Equal("#3B82F6"))
		Expect(s.BackgroundGradientStart).To(Equal("#F8FAFC"))
		Expect(s.BackgroundGradientEnd).To(Equal("#E2E8F0"))
		Expect(s.ButtonColor).To(Equal("#3B82F6"))
	})

	It("invalidates the cache on update so the next read sees the change", func() {
		_, err := svc.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(cache.value).NotTo(BeNil())

		updated, err := svc.Update(ctx, admin, validUpdate())
		Expect(err).NotTo(HaveOccurred())
		Expect(updated.PrimaryColor).To(Equal("#10B981"))
		Expect(cache.invalidated).To(Equal(1))

		s, err := svc.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Name).To(Equal("Constructora Andes"))
	})

	It("keeps a single row across updates", func() {
		_, err := svc.Update(ctx, admin, validUpdate())
		Expect(err).NotTo(HaveOccurred())
		dto := validUpdate()
		dto.Name = "Otra"
		_, err = svc.Update(ctx, admin, dto)
		Expect(err).NotTo(HaveOccurred())

		var count int64
		Expect(db.Model(&companyDatamodel.Settings{}).Count(&count).Error).NotTo(HaveOccurred())
		Expect(count).To(Equal(int64(1)))
	})

	It("rejects invalid colors", func() {
		dto := validUpdate()
		dto.ButtonColor = "blue"
		_, err := svc.Update(ctx, admin, dto)
		Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
	})

	It("is admin only", func() {
		_, err := svc.Update(ctx, &internal.Principal{UserID: "w", Role: internal.RoleWorker}, validUpdate())
		Expect(errors.Is(err, internal.ErrAdminRequired)).To(BeTrue())
	})

	Describe("UploadLogo", func() {
		It("resizes, stores a png and replaces the previous logo", func() {
			first, err := svc.UploadLogo(ctx, admin, bytes.NewReader(pngBytes(2048, 1024)), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(first.LogoURL).NotTo(BeNil())
			Expect(*first.LogoURL).To(HavePrefix("http://localhost:8080/files/company-logos/" + first.ID + "/" + first.ID + "-"))
			Expect(*first.LogoURL).To(HaveSuffix(".png"))

			firstPath := strings.TrimPrefix(*first.LogoURL, "http://localhost:8080/files/company-logos/")
			f, err := fs.Open(firstPath)
			Expect(err).NotTo(HaveOccurred())
			img, err := imaging.Decode(f)
			f.Close()
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Bounds().Dx()).To(Equal(512))
			Expect(img.Bounds().Dy()).To(Equal(256))

			time.Sleep(2 * time.Millisecond)
			second, err := svc.UploadLogo(ctx, admin, bytes.NewReader(pngBytes(64, 64)), "image/png")
			Expect(err).NotTo(HaveOccurred())
			Expect(*second.LogoURL).NotTo(Equal(*first.LogoURL))

			exists, err := afero.Exists(fs, firstPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(exists).To(BeFalse())
		})

		It("rejects non-image uploads", func() {
			_, err := svc.UploadLogo(ctx, admin, strings.NewReader("%PDF-1.4"), "application/pdf")
			Expect(errors.Is(err, internal.NewValidationError("", internal.ErrCodeInvalidFile))).To(BeTrue())
		})

		It("rejects undecodable images", func() {
			_, err := svc.UploadLogo(ctx, admin, strings.NewReader("not an image"), "image/png")
			Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(BeTrue())
		})
	})

	Describe("with an unreachable redis", func() {
		It("falls back to the database", func() {
			client := redis.NewClient(&redis.Options{
				Addr:        "127.0.0.1:1",
				DialTimeout: 50 * time.Millisecond,
				MaxRetries:  -1,
			})
			defer client.Close()

			slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
			svc = company.NewService(companyPostgres.NewSettingsRepository(db), company.NewRedisCache(client, time.Minute), storage.NewStore(fs, "http://x"), nil, slogger)

			s, err := svc.Get(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Name).To(Equal("Sistema Documental"))
		})
	})
})
