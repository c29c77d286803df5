package main

import (
	"log"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"
	courseModels "lms/models/course"
)

// Seeds a staff user, a public course with ordered lessons, a required quiz
// and a final exam. Safe to run repeatedly; every record is FirstOrCreate.
func main() {
	config.LoadConfig()
	database.ConnectDb()

	db := database.Database.Db

	admin := models.User{Email: "admin@example.com"}
	db.Where(models.User{Email: "admin@example.com"}).
		Attrs(models.User{Name: "Admin", Role: "STAFF", IsStaff: true}).
		FirstOrCreate(&admin)
	log.Printf("Seeded staff user %d (%s)", admin.ID, admin.Email)

	course := courseModels.Course{Slug: "go-fundamentals"}
	db.Where(courseModels.Course{Slug: "go-fundamentals"}).
		Attrs(courseModels.Course{
			Name:             "Go Fundamentals",
			Status:           courseModels.CourseActive,
			Visibility:       courseModels.VisibilityPublic,
			EnrollmentMethod: courseModels.EnrollOpen,
			Description:      "An introductory course, open to everyone.",
			CoachName:        "Admin",
		}).
		FirstOrCreate(&course)
	log.Printf("Seeded course %d (%s)", course.ID, course.Slug)

	lessons := []struct {
		Slug  string
		Title string
	}{
		{"getting-started", "Getting Started"},
		{"types-and-structs", "Types and Structs"},
		{"goroutines", "Goroutines"},
	}
	for i, l := range lessons {
		lesson := courseModels.Lesson{CourseID: course.ID, Slug: l.Slug}
		db.Where(courseModels.Lesson{CourseID: course.ID, Slug: l.Slug}).
			Attrs(courseModels.Lesson{Title: l.Title, OrderIndex: i + 1}).
			FirstOrCreate(&lesson)
		log.Printf("Seeded lesson %d (%s)", lesson.ID, lesson.Slug)

		// Required quiz on the first lesson
		if i == 0 {
			quiz := courseModels.LessonQuiz{LessonID: lesson.ID}
			db.Where(courseModels.LessonQuiz{LessonID: lesson.ID}).
				Attrs(courseModels.LessonQuiz{
					Title:        "Getting Started Check",
					IsRequired:   true,
					PassingScore: 70,
				}).
				FirstOrCreate(&quiz)

			question := courseModels.LessonQuizQuestion{QuizID: quiz.ID, OrderIndex: 1}
			db.Where(courseModels.LessonQuizQuestion{QuizID: quiz.ID, OrderIndex: 1}).
				Attrs(courseModels.LessonQuizQuestion{
					Text:          "Which command compiles a Go program?",
					OptionA:       "go build",
					OptionB:       "go fmt",
					OptionC:       "go doc",
					OptionD:       "go env",
					CorrectOption: "A",
				}).
				FirstOrCreate(&question)
		}
	}

	exam := courseModels.Exam{CourseID: course.ID}
	db.Where(courseModels.Exam{CourseID: course.ID}).
		Attrs(courseModels.Exam{
			Title:        "Go Fundamentals Final Exam",
			PassingScore: 70,
			MaxAttempts:  3,
			IsActive:     true,
		}).
		FirstOrCreate(&exam)
	log.Printf("Seeded exam %d for course %d", exam.ID, course.ID)

	questions := []struct {
		Text    string
		Correct string
	}{
		{"What is the zero value of a pointer?", "B"},
		{"Which keyword starts a goroutine?", "C"},
	}
	for i, q := range questions {
		question := courseModels.ExamQuestion{ExamID: exam.ID, OrderIndex: i + 1}
		db.Where(courseModels.ExamQuestion{ExamID: exam.ID, OrderIndex: i + 1}).
			Attrs(courseModels.ExamQuestion{
				Text:          q.Text,
				OptionA:       "0",
				OptionB:       "nil",
				OptionC:       "go",
				OptionD:       "none of the above",
				CorrectOption: q.Correct,
			}).
			FirstOrCreate(&question)
	}

	cohort := courseModels.Cohort{Name: "Spring 2026"}
	db.Where(courseModels.Cohort{Name: "Spring 2026"}).
		Attrs(courseModels.Cohort{IsActive: true}).
		FirstOrCreate(&cohort)
	db.Model(&cohort).Association("Courses").Append(&course)
	log.Printf("Seeded cohort %d (%s)", cohort.ID, cohort.Name)

	log.Printf("Seeding finished at %s", time.Now().Format(time.RFC3339))
}
