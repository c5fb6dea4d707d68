package utils

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"elearn/config"
	"elearn/database"
	"elearn/logger"
	courseModels "elearn/models/course"

	"github.com/go-resty/resty/v2"
	"github.com/robfig/cron/v3"
)

// InitializeCertificateDispatcher starts the outbox drain loop. Pending
// entries are posted to the certificate service; the enrollment record
// gets the issued reference once delivery succeeds.
func InitializeCertificateDispatcher(log *logger.Logger) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc(config.AppConfig.CertificateCron, func() {
		DispatchPendingCertificates(log)
	}); err != nil {
		log.Error("failed to schedule certificate dispatcher", "error", err)
		return c
	}

	c.Start()
	log.Info("certificate dispatcher started", "cron", config.AppConfig.CertificateCron)
	return c
}

// dispatchMu keeps sweeps from overlapping: a slow batch must not let the
// next cron tick pick up the same PENDING rows and double-post them.
var dispatchMu sync.Mutex

// DispatchPendingCertificates drains the certificate outbox once. A sweep
// that starts while another is still running returns immediately.
func DispatchPendingCertificates(log *logger.Logger) {
	if !dispatchMu.TryLock() {
		log.Warn("previous certificate sweep still running, skipping")
		return
	}
	defer dispatchMu.Unlock()

	db := database.Database.Db

	var entries []courseModels.CertificateOutbox
	if err := db.Where("status = ?", courseModels.CertificatePending).
		Order("created_at asc").Limit(50).Find(&entries).Error; err != nil {
		log.Error("failed to fetch pending certificates", "error", err)
		return
	}

	if len(entries) == 0 {
		return
	}

	log.Info("dispatching pending certificates", "count", len(entries))

	client := resty.New().SetTimeout(15 * time.Second)

	for _, entry := range entries {
		if err := deliverCertificate(client, &entry); err != nil {
			entry.Attempts++
			entry.LastError = err.Error()
			if entry.Attempts >= config.AppConfig.CertificateMaxRetries {
				entry.Status = courseModels.CertificateFailed
				log.Error("certificate delivery gave up",
					"enrollmentId", entry.EnrollmentID, "attempts", entry.Attempts, "error", err)
			} else {
				log.Warn("certificate delivery failed, will retry",
					"enrollmentId", entry.EnrollmentID, "attempts", entry.Attempts, "error", err)
			}
			db.Save(&entry)
			continue
		}

		now := time.Now()
		entry.Attempts++
		entry.Status = courseModels.CertificateSent
		entry.LastError = ""
		entry.SentAt = &now
		db.Save(&entry)

		// Stamp the reference onto the enrollment for the learner's profile
		db.Model(&courseModels.Enrollment{}).
			Where("id = ?", entry.EnrollmentID).
			Update("certificate_ref", entry.Reference)

		log.Info("certificate delivered",
			"enrollmentId", entry.EnrollmentID, "reference", entry.Reference)
	}
}

func deliverCertificate(client *resty.Client, entry *courseModels.CertificateOutbox) error {
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetHeader("X-Api-Key", config.AppConfig.CertificateApiKey).
		SetBody(json.RawMessage(entry.Payload)).
		Post(config.AppConfig.CertificateApiURL)
	if err != nil {
		return err
	}

	if resp.StatusCode() >= 300 {
		return &certificateAPIError{status: resp.StatusCode(), body: resp.String()}
	}

	return nil
}

type certificateAPIError struct {
	status int
	body   string
}

func (e *certificateAPIError) Error() string {
	body := e.body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("certificate service returned %d: %s", e.status, body)
}
