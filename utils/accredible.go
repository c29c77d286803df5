package utils

import (
	"fmt"
	"time"

	"lms/config"
	"lms/database"
	"lms/models"

	courseModels "lms/models/course"

	"github.com/go-resty/resty/v2"
)

type accredibleCredentialRequest struct {
	Credential struct {
		RecipientName  string `json:"recipient_name"`
		RecipientEmail string `json:"recipient_email"`
		CourseName     string `json:"course_name"`
		IssuedOn       string `json:"issued_on"`
		Reference      string `json:"reference"`
	} `json:"credential"`
}

type accredibleCredentialResponse struct {
	Credential struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"credential"`
}

// CreateAccredibleCertificate creates a certificate with the external issuer
// and returns its id and public URL. Bounded by a request timeout; callers
// treat any error as non-fatal.
func CreateAccredibleCertificate(userID uint, course *courseModels.Course, attemptID *uint) (string, string, error) {
	db := database.Database.Db

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return "", "", err
	}

	payload := accredibleCredentialRequest{}
	payload.Credential.RecipientName = CertificateDisplayName(&user)
	payload.Credential.RecipientEmail = user.Email
	payload.Credential.CourseName = course.Name
	payload.Credential.IssuedOn = time.Now().Format("2006-01-02")
	if attemptID != nil {
		payload.Credential.Reference = fmt.Sprintf("attempt-%d", *attemptID)
	}

	client := resty.New().
		SetBaseURL(config.AppConfig.AccredibleApiURL).
		SetTimeout(time.Duration(config.AppConfig.AccredibleTimeoutSeconds) * time.Second).
		SetHeader("Authorization", "Token "+config.AppConfig.AccredibleApiKey)

	var response accredibleCredentialResponse
	resp, err := client.R().
		SetBody(payload).
		SetResult(&response).
		Post("credentials")
	if err != nil {
		return "", "", err
	}
	if resp.IsError() {
		return "", "", fmt.Errorf("accredible returned %s: %s", resp.Status(), resp.String())
	}

	return response.Credential.ID, response.Credential.URL, nil
}
