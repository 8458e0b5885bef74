// Package services holds the best-effort side effects fired after local
// commits: document-store sync and the periodic database backup. Nothing
// here may fail a primary operation; errors are logged and dropped.
package services

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/rs/zerolog"

	"renovaflow-backend/internal/storage"
)

// DocSync mirrors project folders and uploaded files into the external
// document store. A nil storage client disables every operation, so the
// rest of the system can call it unconditionally.
type DocSync struct {
	storageClient *storage.Client
	logger        zerolog.Logger
}

func NewDocSync(storageClient *storage.Client, logger zerolog.Logger) *DocSync {
	return &DocSync{
		storageClient: storageClient,
		logger:        logger.With().Str("component", "docsync").Logger(),
	}
}

func (d *DocSync) Enabled() bool {
	return d != nil && d.storageClient != nil
}

// EnsureProjectFolder creates the remote folder for a project. Dispatch on
// a goroutine; the HTTP response never waits for it.
func (d *DocSync) EnsureProjectFolder(projectID string) {
	if !d.Enabled() {
		return
	}
	go func() {
		if err := d.storageClient.EnsureFolder(projectFolder(projectID)); err != nil {
			d.logger.Warn().Err(err).Str("project_id", projectID).
				Msg("remote folder creation failed")
		}
	}()
}

// CopyProjectFile mirrors an uploaded file into the project's remote
// folder.
func (d *DocSync) CopyProjectFile(projectID, filename string, data []byte, contentType string) {
	if !d.Enabled() {
		return
	}
	go func() {
		objectPath := path.Join(projectFolder(projectID), filename)
		if _, err := d.storageClient.UploadFile(objectPath, data, contentType); err != nil {
			d.logger.Warn().Err(err).Str("project_id", projectID).Str("file", filename).
				Msg("remote file copy failed")
		}
	}()
}

// RemoveProjectFile deletes the remote copy of a file.
func (d *DocSync) RemoveProjectFile(projectID, filename string) {
	if !d.Enabled() {
		return
	}
	go func() {
		objectPath := path.Join(projectFolder(projectID), filename)
		if err := d.storageClient.DeleteFile(objectPath); err != nil {
			d.logger.Warn().Err(err).Str("project_id", projectID).Str("file", filename).
				Msg("remote file delete failed")
		}
	}()
}

// BackupDatabase copies the whole database file to the document store.
func (d *DocSync) BackupDatabase(databasePath string) {
	if !d.Enabled() {
		return
	}

	data, err := os.ReadFile(databasePath)
	if err != nil {
		d.logger.Warn().Err(err).Str("path", databasePath).Msg("backup read failed")
		return
	}

	objectPath := fmt.Sprintf("backups/%s_%s", time.Now().Format("20060102_150405"), path.Base(databasePath))
	if _, err := d.storageClient.UploadFile(objectPath, data, "application/octet-stream"); err != nil {
		d.logger.Warn().Err(err).Msg("database backup upload failed")
		return
	}
	d.logger.Info().Str("object", objectPath).Int("bytes", len(data)).Msg("database backup uploaded")
}

// StartBackupLoop runs one delayed backup shortly after startup, then one
// per interval, until stop is closed.
func (d *DocSync) StartBackupLoop(databasePath string, initialDelay, interval time.Duration, stop <-chan struct{}) {
	if !d.Enabled() {
		return
	}
	go func() {
		select {
		case <-time.After(initialDelay):
			d.BackupDatabase(databasePath)
		case <-stop:
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.BackupDatabase(databasePath)
			case <-stop:
				return
			}
		}
	}()
}

func projectFolder(projectID string) string {
	return "projects/" + projectID
}
