package storage

import (
	"fmt"
	"mime/multipart"

	"github.com/Delerious28/Andrew-webshop2-sub000/config"
)

// Storage 抽象文件存储后端，返回可访问的文件路径或 URL
type Storage interface {
	UploadFile(file *multipart.FileHeader, path string) (string, error)
}

// NewStorage 根据配置选择存储后端
func NewStorage() (Storage, error) {
	switch config.AppConfig.StorageBackend {
	case "s3":
		return NewS3Client(config.AppConfig.S3Region, config.AppConfig.S3Bucket)
	case "gcs":
		return NewGCSClient(config.AppConfig.GCSBucketName, config.AppConfig.GCSCredentialsFile)
	case "local", "":
		return NewLocalStorage(config.AppConfig.LocalStoragePath)
	default:
		return nil, fmt.Errorf("未知的存储后端: %s", config.AppConfig.StorageBackend)
	}
}
