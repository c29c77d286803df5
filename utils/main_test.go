package utils

import (
	"testing"

	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDb wires the package globals to a fresh in-memory database.
// A single connection keeps every query on the same sqlite memory instance.
func setupTestDb(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	config.AppConfig = &config.Config{
		JWTKey:                   "testSecret",
		VideoCompletionThreshold: 90.0,
		AccredibleTimeoutSeconds: 1,
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{Name: "Test Student", Email: email}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return &user
}

func createTestCourse(t *testing.T, db *gorm.DB, slug, visibility, enrollmentMethod string) *courseModels.Course {
	t.Helper()
	course := courseModels.Course{
		Name:             "Course " + slug,
		Slug:             slug,
		Status:           courseModels.CourseActive,
		Visibility:       visibility,
		EnrollmentMethod: enrollmentMethod,
	}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("failed to create test course: %v", err)
	}
	return &course
}

func createTestLessons(t *testing.T, db *gorm.DB, courseID uint, count int) []courseModels.Lesson {
	t.Helper()
	lessons := make([]courseModels.Lesson, count)
	for i := 0; i < count; i++ {
		lessons[i] = courseModels.Lesson{
			CourseID:   courseID,
			Title:      "Lesson",
			Slug:       "lesson-" + string(rune('a'+i)),
			OrderIndex: i + 1,
		}
		if err := db.Create(&lessons[i]).Error; err != nil {
			t.Fatalf("failed to create test lesson: %v", err)
		}
	}
	return lessons
}

func completeLessons(t *testing.T, db *gorm.DB, userID uint, lessons []courseModels.Lesson) {
	t.Helper()
	for _, lesson := range lessons {
		if _, quizRequired, err := CompleteLesson(userID, &lesson); err != nil || quizRequired != nil {
			t.Fatalf("failed to complete lesson %d: err=%v quizRequired=%v", lesson.ID, err, quizRequired)
		}
	}
}
