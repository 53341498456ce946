package config

import (
	"os"
	"strings"
)

// Scratch backend names accepted by VIDFETCH_SCRATCH_BACKEND
const (
	ScratchLocal = "local"
	ScratchS3    = "s3"
	ScratchGCS   = "gcs"
	ScratchSFTP  = "sftp"
)

// GetScratchBackend returns the transient-store backend used while a
// download is materialized. Defaults to the local temp directory.
func GetScratchBackend() string {
	return strings.ToLower(getString("VIDFETCH_SCRATCH_BACKEND", ScratchLocal))
}

// GetScratchDir returns the local directory for scratch files.
// Configurable via VIDFETCH_SCRATCH_DIR; defaults to the OS temp dir.
func GetScratchDir() string {
	return getString("VIDFETCH_SCRATCH_DIR", os.TempDir())
}

// GetScratchAccessInfo builds the access info map for the configured
// backend. Keys mirror what each scratch backend reads.
func GetScratchAccessInfo() map[string]string {
	switch GetScratchBackend() {
	case ScratchS3:
		return map[string]string{
			"accessKey": os.Getenv("VIDFETCH_S3_ACCESS_KEY"),
			"secretKey": os.Getenv("VIDFETCH_S3_SECRET_KEY"),
			"region":    getString("VIDFETCH_S3_REGION", "us-east-1"),
			"bucket":    os.Getenv("VIDFETCH_S3_BUCKET"),
			"prefix":    getString("VIDFETCH_S3_PREFIX", "vidfetch-scratch/"),
		}
	case ScratchGCS:
		return map[string]string{
			"credentialsJSON": os.Getenv("VIDFETCH_GCS_CREDENTIALS"), // base64 encoded service account key
			"bucket":          os.Getenv("VIDFETCH_GCS_BUCKET"),
			"prefix":          getString("VIDFETCH_GCS_PREFIX", "vidfetch-scratch/"),
		}
	case ScratchSFTP:
		return map[string]string{
			"host":       os.Getenv("VIDFETCH_SFTP_HOST"),
			"port":       getString("VIDFETCH_SFTP_PORT", "22"),
			"user":       os.Getenv("VIDFETCH_SFTP_USER"),
			"password":   os.Getenv("VIDFETCH_SFTP_PASSWORD"),
			"privateKey": os.Getenv("VIDFETCH_SFTP_PRIVATE_KEY"),
			"remoteDir":  getString("VIDFETCH_SFTP_DIR", "/tmp/vidfetch-scratch"),
		}
	default:
		return map[string]string{
			"baseDir": GetScratchDir(),
		}
	}
}
