package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"enrollment-api/internal/cache"
	"enrollment-api/internal/model"
	"enrollment-api/internal/storage"
	"enrollment-api/pkg/apierror"
)

const testMaxUpload = int64(1024)

type parentFixture struct {
	svc          *ParentService
	users        *mockUserStore
	children     *mockChildStore
	applications *mockApplicationStore
	documents    *storage.MockStorage
	profiles     *cache.MemoryCache
}

func newParentFixture() *parentFixture {
	users := new(mockUserStore)
	children := new(mockChildStore)
	applications := new(mockApplicationStore)
	documents := new(storage.MockStorage)
	profiles := cache.NewMemoryCache()

	svc := NewParentService(users, children, applications, documents, profiles, testMaxUpload)
	return &parentFixture{
		svc:          svc,
		users:        users,
		children:     children,
		applications: applications,
		documents:    documents,
		profiles:     profiles,
	}
}

func TestUpdateProfileRecomputesCompletionAndEvictsCache(t *testing.T) {
	f := newParentFixture()
	ctx := context.Background()

	user := &model.User{
		ProviderUID: "uid-1",
		Email:       "parent@example.com",
		FirstName:   "Dana",
		LastName:    "Reyes",
		Role:        model.RoleParent,
		IsActive:    true,
	}
	before := user.CalculateProfileCompletion()

	f.profiles.Set(ctx, "uid-1", &model.UserProfile{Email: user.Email}, time.Minute)
	f.users.On("GetByProviderUID", ctx, "uid-1").Return(user, nil)
	f.users.On("Update", ctx, user).Return(nil)

	phone := "+1-555-0100"
	city := "Springfield"
	profile, err := f.svc.UpdateProfile(ctx, "uid-1", model.UpdateParentProfileRequest{
		PhoneNumber: &phone,
		City:        &city,
	})
	require.NoError(t, err)
	assert.Greater(t, profile.ProfileCompletionPercentage, before)

	_, ok := f.profiles.Get(ctx, "uid-1")
	assert.False(t, ok)
}

func TestUpdateProfileRejectsClearingName(t *testing.T) {
	f := newParentFixture()
	ctx := context.Background()

	user := &model.User{ProviderUID: "uid-1", FirstName: "Dana", LastName: "Reyes"}
	f.users.On("GetByProviderUID", ctx, "uid-1").Return(user, nil)

	empty := "  "
	_, err := f.svc.UpdateProfile(ctx, "uid-1", model.UpdateParentProfileRequest{FirstName: &empty})
	requireAPIErrorCode(t, err, apierror.CodeValidation)
	f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestCreateChildValidatesFields(t *testing.T) {
	f := newParentFixture()
	ctx := context.Background()

	_, err := f.svc.CreateChild(ctx, "uid-1", model.CreateChildRequest{
		FullName:  "",
		Birthdate: time.Now().AddDate(-3, 0, 0),
		Gender:    model.GenderFemale,
	})
	requireAPIErrorCode(t, err, apierror.CodeValidation)

	_, err = f.svc.CreateChild(ctx, "uid-1", model.CreateChildRequest{
		FullName:  "Mia Reyes",
		Birthdate: time.Now().AddDate(1, 0, 0),
		Gender:    model.GenderFemale,
	})
	requireAPIErrorCode(t, err, apierror.CodeValidation)

	_, err = f.svc.CreateChild(ctx, "uid-1", model.CreateChildRequest{
		FullName:  "Mia Reyes",
		Birthdate: time.Now().AddDate(-3, 0, 0),
		Gender:    "Unknown",
	})
	requireAPIErrorCode(t, err, apierror.CodeValidation)
}

func TestDeleteChildBlockedByOpenApplication(t *testing.T) {
	f := newParentFixture()
	ctx := context.Background()
	parent := enrollableParent()
	child := childOf(parent)

	f.users.On("GetByProviderUID", ctx, parent.ProviderUID).Return(parent, nil)
	f.children.On("GetOwned", ctx, child.ID, parent.ID).Return(child, nil)
	f.applications.On("HasOpenForChild", ctx, child.ID).Return(true, nil)

	err := f.svc.DeleteChild(ctx, parent.ProviderUID, child.ID)
	requireAPIErrorCode(t, err, apierror.CodeConflict)
	f.children.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteChildSoftDeletesWithActor(t *testing.T) {
	f := newParentFixture()
	ctx := context.Background()
	parent := enrollableParent()
	child := childOf(parent)

	f.users.On("GetByProviderUID", ctx, parent.ProviderUID).Return(parent, nil)
	f.children.On("GetOwned", ctx, child.ID, parent.ID).Return(child, nil)
	f.applications.On("HasOpenForChild", ctx, child.ID).Return(false, nil)
	f.children.On("Delete", ctx, child, parent.ProviderUID).Return(nil)

	require.NoError(t, f.svc.DeleteChild(ctx, parent.ProviderUID, child.ID))
	f.children.AssertExpectations(t)
}

func TestUploadChildDocumentValidation(t *testing.T) {
	f := newParentFixture()
	ctx := context.Background()
	parent := enrollableParent()
	child := childOf(parent)
	body := strings.NewReader("data")

	_, err := f.svc.UploadChildDocument(ctx, parent.ProviderUID, child.ID, "passport", body, 4, "image/png")
	requireAPIErrorCode(t, err, apierror.CodeValidation)

	_, err = f.svc.UploadChildDocument(ctx, parent.ProviderUID, child.ID, DocumentPhoto, body, testMaxUpload+1, "image/png")
	requireAPIErrorCode(t, err, apierror.CodeValidation)

	_, err = f.svc.UploadChildDocument(ctx, parent.ProviderUID, child.ID, DocumentPhoto, body, 4, "text/html")
	requireAPIErrorCode(t, err, apierror.CodeValidation)
}

func TestUploadChildDocumentStoresKeyAndReplacesPrevious(t *testing.T) {
	f := newParentFixture()
	ctx := context.Background()
	parent := enrollableParent()
	child := childOf(parent)
	oldKey := "children/old-photo"
	child.ImageKey = &oldKey
	body := strings.NewReader("data")

	f.users.On("GetByProviderUID", ctx, parent.ProviderUID).Return(parent, nil)
	f.children.On("GetOwned", ctx, child.ID, parent.ID).Return(child, nil)
	f.documents.On("Upload", ctx, mock.Anything, body, int64(4), "image/png").Return(nil)
	f.children.On("Update", ctx, child).Return(nil)
	f.documents.On("Delete", ctx, oldKey).Return(nil)

	updated, err := f.svc.UploadChildDocument(ctx, parent.ProviderUID, child.ID, DocumentPhoto, body, 4, "image/png")
	require.NoError(t, err)
	require.NotNil(t, updated.ImageKey)
	assert.NotEqual(t, oldKey, *updated.ImageKey)
	assert.True(t, strings.HasPrefix(*updated.ImageKey, "children/"+child.ID.String()+"/photo-"))

	f.documents.AssertCalled(t, "Delete", ctx, oldKey)
}

func TestChildDocumentURLRequiresUploadedDocument(t *testing.T) {
	f := newParentFixture()
	ctx := context.Background()
	parent := enrollableParent()
	child := childOf(parent)

	f.users.On("GetByProviderUID", ctx, parent.ProviderUID).Return(parent, nil)
	f.children.On("GetOwned", ctx, child.ID, parent.ID).Return(child, nil)

	_, err := f.svc.ChildDocumentURL(ctx, parent.ProviderUID, child.ID, DocumentBirthCertificate)
	requireAPIErrorCode(t, err, apierror.CodeNotFound)
}
