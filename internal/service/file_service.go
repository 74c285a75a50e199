package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"khata/internal/config"
	"khata/internal/domain"
	"khata/internal/port"
)

// FileUploadInput is the DTO for file upload requests.
type FileUploadInput struct {
	CompanyID  uuid.UUID
	UploadedBy uuid.UUID
	File       multipart.File
	Header     *multipart.FileHeader
}

// StoredFile is file metadata plus its public address, which is what product
// images and company logos store.
type StoredFile struct {
	*domain.FileMeta
	FileURL string `json:"file_url"`
}

// FileService defines the file management contract.
type FileService interface {
	Upload(ctx context.Context, input FileUploadInput) (*StoredFile, error)
	Get(ctx context.Context, companyID, fileID uuid.UUID) (*StoredFile, error)
	List(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]StoredFile, int, error)
	GetDownloadURL(ctx context.Context, companyID, fileID uuid.UUID) (string, error)
	Delete(ctx context.Context, companyID, fileID uuid.UUID) error
}

type fileService struct {
	fileRepo port.FileMetaRepository
	storage  port.ObjectStorage
	cfg      *config.S3Config
}

// NewFileService creates a new FileService implementation.
func NewFileService(
	fileRepo port.FileMetaRepository,
	storage port.ObjectStorage,
	cfg *config.S3Config,
) FileService {
	return &fileService{
		fileRepo: fileRepo,
		storage:  storage,
		cfg:      cfg,
	}
}

func (s *fileService) stored(meta *domain.FileMeta) *StoredFile {
	return &StoredFile{FileMeta: meta, FileURL: s.storage.PublicURL(meta.S3Bucket, meta.S3Key)}
}

func (s *fileService) Upload(ctx context.Context, input FileUploadInput) (*StoredFile, error) {
	log := zerolog.Ctx(ctx)

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))
	fileType, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Sniff the first 512 bytes; the extension alone is not trusted.
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	if _, valid := domain.AllowedContentTypes[http.DetectContentType(buf[:n])]; !valid {
		return nil, domain.ErrUnsupportedFileType
	}
	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	fileID := uuid.New()
	fileName := fileID.String() + "." + ext
	s3Key := fmt.Sprintf("companies/%s/files/%s", input.CompanyID, fileName)
	contentType := domain.AllowedFileTypes[fileType]

	meta := &domain.FileMeta{
		ID:           fileID,
		CompanyID:    input.CompanyID,
		UploadedBy:   input.UploadedBy,
		FileName:     fileName,
		OriginalName: filepath.Base(input.Header.Filename),
		FileType:     fileType,
		FileSize:     input.Header.Size,
		S3Bucket:     s.cfg.Bucket,
		S3Key:        s3Key,
		ContentType:  contentType,
		Status:       domain.FileStatusPending,
	}

	log.Info().
		Str("file_id", fileID.String()).
		Str("content_type", contentType).
		Int64("size", input.Header.Size).
		Msg("uploading file")

	if err := s.fileRepo.Create(ctx, meta); err != nil {
		return nil, fmt.Errorf("creating file metadata: %w", err)
	}

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         s3Key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		log.Error().Err(err).Str("file_id", fileID.String()).Msg("storage upload failed")
		if uerr := s.fileRepo.UpdateStatus(ctx, meta.CompanyID, meta.ID, domain.FileStatusFailed); uerr != nil {
			log.Error().Err(uerr).Str("file_id", fileID.String()).Msg("marking upload failed")
		}
		return nil, domain.ErrUploadFailed
	}

	if err := s.fileRepo.UpdateStatus(ctx, meta.CompanyID, meta.ID, domain.FileStatusUploaded); err != nil {
		return nil, fmt.Errorf("updating file status: %w", err)
	}
	meta.Status = domain.FileStatusUploaded

	return s.stored(meta), nil
}

func (s *fileService) Get(ctx context.Context, companyID, fileID uuid.UUID) (*StoredFile, error) {
	meta, err := s.fileRepo.GetByID(ctx, companyID, fileID)
	if err != nil {
		return nil, err
	}
	return s.stored(meta), nil
}

func (s *fileService) List(ctx context.Context, companyID uuid.UUID, offset, limit int) ([]StoredFile, int, error) {
	metas, total, err := s.fileRepo.ListByCompany(ctx, companyID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	files := make([]StoredFile, 0, len(metas))
	for i := range metas {
		files = append(files, *s.stored(&metas[i]))
	}
	return files, total, nil
}

func (s *fileService) GetDownloadURL(ctx context.Context, companyID, fileID uuid.UUID) (string, error) {
	meta, err := s.fileRepo.GetByID(ctx, companyID, fileID)
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, meta.S3Bucket, meta.S3Key, s.cfg.PresignExpiry)
}

func (s *fileService) Delete(ctx context.Context, companyID, fileID uuid.UUID) error {
	meta, err := s.fileRepo.GetByID(ctx, companyID, fileID)
	if err != nil {
		return err
	}

	if err := s.storage.Delete(ctx, meta.S3Bucket, meta.S3Key); err != nil {
		return fmt.Errorf("deleting from storage: %w", err)
	}
	zerolog.Ctx(ctx).Info().Str("file_id", fileID.String()).Msg("file deleted")
	return s.fileRepo.Delete(ctx, companyID, fileID)
}
