package seed

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kameliyaaivanova/BlogAPI/internal/hash"
	"github.com/kameliyaaivanova/BlogAPI/internal/models"
)

const (
	AdminRoleName = "Admin"
	UserRoleName  = "User"
)

var categoryTitles = []string{
	"Tech & AI",
	"Science & Space",
	"History & Culture",
	"Business & Finance",
	"Health & Wellness",
	"Self-Improvement",
	"Travel & Adventure",
	"Food & Cooking",
	"Gaming",
	"Movies & TV Shows",
	"Music & Entertainment",
	"Fashion & Style",
	"Sports & Fitness",
	"Psychology & Mindset",
	"Mythology & Folklore",
	"Social Media & Digital Trends",
}

// Run seeds the permission catalog, the built-in roles, the initial admin
// account and the starter categories. It is idempotent and safe to call on
// every boot.
func Run(db *gorm.DB) error {
	perms, err := seedPermissions(db)
	if err != nil {
		return err
	}

	adminRole, err := seedRole(db, AdminRoleName, perms)
	if err != nil {
		return err
	}
	userPerms := make([]models.Permission, 0, 2)
	for _, p := range perms {
		if p.Title == models.ReadPosts || p.Title == models.ReadCategories {
			userPerms = append(userPerms, p)
		}
	}
	if _, err := seedRole(db, UserRoleName, userPerms); err != nil {
		return err
	}

	if err := seedAdminUser(db, adminRole); err != nil {
		return err
	}
	if err := seedCategories(db); err != nil {
		return err
	}
	return seedPosts(db)
}

func seedPermissions(db *gorm.DB) ([]models.Permission, error) {
	out := make([]models.Permission, 0, len(models.PermissionOptions()))
	for _, opt := range models.PermissionOptions() {
		var p models.Permission
		err := db.Where("title = ?", opt.Abbreviation).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = models.Permission{Title: opt.Abbreviation, Description: opt.Description, CreatedAt: time.Now()}
			if err := db.Create(&p).Error; err != nil {
				return nil, fmt.Errorf("seed permission %s: %w", opt.Abbreviation, err)
			}
		} else if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func seedRole(db *gorm.DB, name string, perms []models.Permission) (models.Role, error) {
	var role models.Role
	err := db.Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		role = models.Role{Name: name, Permissions: perms, CreatedAt: time.Now()}
		if err := db.Create(&role).Error; err != nil {
			return role, fmt.Errorf("seed role %s: %w", name, err)
		}
		return role, nil
	}
	return role, err
}

func seedAdminUser(db *gorm.DB, adminRole models.Role) error {
	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", "kamkam").Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	hashed, err := hash.HashPassword("Kamkam123!")
	if err != nil {
		return err
	}
	user := models.User{
		Username:     "kamkam",
		Email:        "kamkam@gmail.com",
		PasswordHash: hashed,
		Enabled:      true,
		CreatedAt:    time.Now(),
		RoleID:       adminRole.ID,
	}
	return db.Create(&user).Error
}

type starterPost struct {
	title       string
	description string
	content     string
	category    string
}

var starterPosts = []starterPost{
	{
		title:       "5 AI Tools That Will Change Your Daily Life in 2025",
		description: "AI is evolving rapidly, and these five tools will transform how we work, communicate, and live.",
		content:     "AI is revolutionizing our daily routines, making tasks easier and faster. ChatGPT helps with writing and brainstorming, while Midjourney creates stunning AI-generated images. Notion AI enhances productivity by organizing notes and tasks efficiently. ElevenLabs is making voice generation more realistic than ever. Finally, Perplexity AI acts as a supercharged search engine, delivering quick and accurate answers. These tools are just the beginning of AI's transformation in our lives.",
		category:    "Tech & AI",
	},
	{
		title:       "NASA's Latest Discovery: A New Earth-Like Exoplanet?",
		description: "Scientists have found a planet that could potentially support life. What does this mean for space exploration?",
		content:     "Scientists have discovered a new exoplanet that may have conditions suitable for life. Located in the habitable zone of its star, it has the right temperature for liquid water. NASA's telescopes detected atmospheric signals that hint at possible life-supporting conditions. While it's still too far to explore directly, future space missions could reveal more. Could this be humanity's next home? Only time and technology will tell.",
		category:    "Science & Space",
	},
}

func seedPosts(db *gorm.DB) error {
	for _, p := range starterPosts {
		var count int64
		if err := db.Model(&models.Post{}).Where("title = ?", p.title).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		var category models.Category
		if err := db.Where("title = ?", p.category).First(&category).Error; err != nil {
			return fmt.Errorf("seed post %q: %w", p.title, err)
		}

		post := models.Post{
			Title:       p.title,
			Description: p.description,
			Author:      "kamkam",
			Content:     p.content,
			CreatedAt:   time.Now(),
			Categories:  []models.Category{category},
		}
		if err := db.Create(&post).Error; err != nil {
			return fmt.Errorf("seed post %q: %w", p.title, err)
		}
	}
	return nil
}

func seedCategories(db *gorm.DB) error {
	for _, title := range categoryTitles {
		var count int64
		if err := db.Model(&models.Category{}).Where("title = ?", title).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := db.Create(&models.Category{Title: title, CreatedAt: time.Now()}).Error; err != nil {
			return fmt.Errorf("seed category %q: %w", title, err)
		}
	}
	return nil
}
