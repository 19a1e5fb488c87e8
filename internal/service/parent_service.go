package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"enrollment-api/internal/cache"
	"enrollment-api/internal/model"
	"enrollment-api/internal/storage"
	"enrollment-api/pkg/apierror"
)

const (
	DocumentPhoto            = "photo"
	DocumentBirthCertificate = "birth_certificate"

	documentURLTTL = 15 * time.Minute
)

var allowedDocumentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// ChildStore is the slice of the child repository the parent service needs.
type ChildStore interface {
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]*model.Child, error)
	GetOwned(ctx context.Context, id uuid.UUID, parentID uuid.UUID) (*model.Child, error)
	Add(ctx context.Context, child *model.Child) error
	Update(ctx context.Context, child *model.Child) error
	Delete(ctx context.Context, child *model.Child, deletedBy string) error
}

// OpenApplicationChecker guards child deletion against in-flight
// applications.
type OpenApplicationChecker interface {
	HasOpenForChild(ctx context.Context, childID uuid.UUID) (bool, error)
}

type ParentUserStore interface {
	GetByProviderUID(ctx context.Context, uid string) (*model.User, error)
	GetWithChildren(ctx context.Context, uid string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// ParentService serves the parent-facing profile and children surface.
type ParentService struct {
	users         ParentUserStore
	children      ChildStore
	applications  OpenApplicationChecker
	documents     storage.ObjectStorage
	profiles      cache.ProfileCache
	maxUploadSize int64
}

func NewParentService(
	users ParentUserStore,
	children ChildStore,
	applications OpenApplicationChecker,
	documents storage.ObjectStorage,
	profiles cache.ProfileCache,
	maxUploadSize int64,
) *ParentService {
	return &ParentService{
		users:         users,
		children:      children,
		applications:  applications,
		documents:     documents,
		profiles:      profiles,
		maxUploadSize: maxUploadSize,
	}
}

// GetMe returns the parent's record with their children attached.
func (s *ParentService) GetMe(ctx context.Context, uid string) (*model.User, error) {
	user, err := s.users.GetWithChildren(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}
	return user, nil
}

// UpdateProfile applies the provided fields and recomputes the profile
// completion percentage that gates enrollment.
func (s *ParentService) UpdateProfile(ctx context.Context, uid string, req model.UpdateParentProfileRequest) (*model.UserProfile, error) {
	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}

	applyString(&user.FirstName, req.FirstName)
	applyString(&user.LastName, req.LastName)
	applyString(&user.PhoneNumber, req.PhoneNumber)
	applyString(&user.Country, req.Country)
	applyOptional(&user.AddressLine1, req.AddressLine1)
	applyOptional(&user.AddressLine2, req.AddressLine2)
	applyOptional(&user.City, req.City)
	applyOptional(&user.State, req.State)
	applyOptional(&user.PostalCode, req.PostalCode)
	applyOptional(&user.EmergencyContactName, req.EmergencyContactName)
	applyOptional(&user.EmergencyContactPhone, req.EmergencyContactPhone)
	applyOptional(&user.RelationshipToChild, req.RelationshipToChild)

	if req.AcceptTerms != nil && *req.AcceptTerms && !user.AcceptedTerms {
		user.AcceptedTerms = true
		user.TermsAcceptedAt = ptrTime(time.Now().UTC())
	}

	if strings.TrimSpace(user.FirstName) == "" || strings.TrimSpace(user.LastName) == "" {
		return nil, apierror.Validation("first and last name cannot be cleared", "")
	}

	user.CalculateProfileCompletion()
	user.UpdatedBy = &uid
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	s.profiles.Evict(ctx, uid)

	profile := model.NewProfile(user)
	return &profile, nil
}

func (s *ParentService) ListChildren(ctx context.Context, uid string) ([]*model.Child, error) {
	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}
	return s.children.ListByParent(ctx, user.ID)
}

func (s *ParentService) CreateChild(ctx context.Context, uid string, req model.CreateChildRequest) (*model.Child, error) {
	if err := validateChildFields(req.FullName, req.Birthdate, req.Gender); err != nil {
		return nil, err
	}

	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}

	child := &model.Child{
		FullName:  strings.TrimSpace(req.FullName),
		Birthdate: req.Birthdate,
		Gender:    req.Gender,
		Address:   strings.TrimSpace(req.Address),
		ParentID:  user.ID,
	}
	child.CreatedBy = uid

	if err := s.children.Add(ctx, child); err != nil {
		return nil, fmt.Errorf("create child: %w", err)
	}
	return child, nil
}

func (s *ParentService) GetChild(ctx context.Context, uid string, childID uuid.UUID) (*model.Child, error) {
	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}
	return s.ownedChild(ctx, childID, user.ID)
}

func (s *ParentService) UpdateChild(ctx context.Context, uid string, childID uuid.UUID, req model.UpdateChildRequest) (*model.Child, error) {
	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}

	child, err := s.ownedChild(ctx, childID, user.ID)
	if err != nil {
		return nil, err
	}

	applyString(&child.FullName, req.FullName)
	if req.Birthdate != nil {
		child.Birthdate = *req.Birthdate
	}
	if req.Gender != nil {
		child.Gender = *req.Gender
	}
	applyString(&child.Address, req.Address)

	if err := validateChildFields(child.FullName, child.Birthdate, child.Gender); err != nil {
		return nil, err
	}

	child.UpdatedBy = &uid
	if err := s.children.Update(ctx, child); err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	return child, nil
}

// DeleteChild soft-deletes the record. A child with an application still in
// flight cannot be removed.
func (s *ParentService) DeleteChild(ctx context.Context, uid string, childID uuid.UUID) error {
	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return mapUserLookupErr(err)
	}

	child, err := s.ownedChild(ctx, childID, user.ID)
	if err != nil {
		return err
	}

	open, err := s.applications.HasOpenForChild(ctx, childID)
	if err != nil {
		return fmt.Errorf("check applications: %w", err)
	}
	if open {
		return apierror.Conflict("this child has an enrollment application in progress", "")
	}

	return s.children.Delete(ctx, child, uid)
}

// UploadChildDocument stores a photo or birth certificate and records its
// object key on the child.
func (s *ParentService) UploadChildDocument(ctx context.Context, uid string, childID uuid.UUID, kind string, r io.Reader, size int64, contentType string) (*model.Child, error) {
	if kind != DocumentPhoto && kind != DocumentBirthCertificate {
		return nil, apierror.Validation("document kind must be photo or birth_certificate", "kind")
	}
	if size <= 0 || size > s.maxUploadSize {
		return nil, apierror.Validation(
			fmt.Sprintf("document must be between 1 byte and %d bytes", s.maxUploadSize), "size")
	}
	if !allowedDocumentTypes[contentType] {
		return nil, apierror.Validation("document must be a JPEG, PNG, or PDF", "content_type")
	}

	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}

	child, err := s.ownedChild(ctx, childID, user.ID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("children/%s/%s-%s", childID, kind, uuid.NewString())
	if err := s.documents.Upload(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	previous := child.ImageKey
	if kind == DocumentPhoto {
		child.ImageKey = &key
	} else {
		previous = child.BirthCertificateKey
		child.BirthCertificateKey = &key
	}

	child.UpdatedBy = &uid
	if err := s.children.Update(ctx, child); err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}

	if previous != nil {
		if err := s.documents.Delete(ctx, *previous); err != nil {
			slog.Warn("failed to delete replaced document", "key", *previous, "error", err)
		}
	}
	return child, nil
}

// ChildDocumentURL returns a short-lived link to a stored document.
func (s *ParentService) ChildDocumentURL(ctx context.Context, uid string, childID uuid.UUID, kind string) (string, error) {
	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return "", mapUserLookupErr(err)
	}

	child, err := s.ownedChild(ctx, childID, user.ID)
	if err != nil {
		return "", err
	}

	var key *string
	switch kind {
	case DocumentPhoto:
		key = child.ImageKey
	case DocumentBirthCertificate:
		key = child.BirthCertificateKey
	default:
		return "", apierror.Validation("document kind must be photo or birth_certificate", "kind")
	}
	if key == nil {
		return "", apierror.NotFound("no document of this kind has been uploaded", kind)
	}

	url, err := s.documents.PresignGet(ctx, *key, documentURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign document: %w", err)
	}
	return url, nil
}

func (s *ParentService) ownedChild(ctx context.Context, childID uuid.UUID, parentID uuid.UUID) (*model.Child, error) {
	child, err := s.children.GetOwned(ctx, childID, parentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, apierror.NotFound("child not found", "")
		}
		return nil, err
	}
	return child, nil
}

func validateChildFields(name string, birthdate time.Time, gender model.Gender) error {
	if strings.TrimSpace(name) == "" {
		return apierror.Validation("child name is required", "full_name")
	}
	if birthdate.IsZero() || birthdate.After(time.Now()) {
		return apierror.Validation("birthdate must be in the past", "birthdate")
	}
	switch gender {
	case model.GenderMale, model.GenderFemale, model.GenderOther:
	default:
		return apierror.Validation("gender must be Male, Female, or Other", "gender")
	}
	return nil
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func applyOptional(dst **string, src *string) {
	if src == nil {
		return
	}
	trimmed := strings.TrimSpace(*src)
	if trimmed == "" {
		*dst = nil
		return
	}
	*dst = &trimmed
}
