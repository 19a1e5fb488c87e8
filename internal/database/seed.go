package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"enrollment-api/internal/model"
)

const seedActor = "seed"

// Seed loads development fixtures: accounts for each role, classrooms,
// children, and a worked example of the application lifecycle. It is
// idempotent and refuses to run twice.
func Seed(db *gorm.DB) error {
	var existing int64
	if err := db.Model(&model.User{}).Where("is_seed_user = ?", true).Count(&existing).Error; err != nil {
		return fmt.Errorf("seed precheck: %w", err)
	}
	if existing > 0 {
		slog.Info("seed data already present, skipping")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		admin, err := seedUser(tx, "admin@littlesprouts.test", "Admin123!", model.RoleAdmin, "Avery", "Quinn")
		if err != nil {
			return err
		}
		if _, err := seedUser(tx, "staff@littlesprouts.test", "Staff123!", model.RoleStaff, "Jordan", "Lee"); err != nil {
			return err
		}
		parent, err := seedUser(tx, "parent@littlesprouts.test", "Parent123!", model.RoleParent, "Dana", "Reyes")
		if err != nil {
			return err
		}

		rooms := []*model.Classroom{
			{Name: "Sunflower Room", Capacity: 18},
			{Name: "Maple Room", Capacity: 16},
			{Name: "River Room", Capacity: 20},
		}
		for _, room := range rooms {
			stamp(&room.BaseEntity)
			if err := tx.Create(room).Error; err != nil {
				return fmt.Errorf("seed classroom %s: %w", room.Name, err)
			}
		}

		child := &model.Child{
			FullName:  "Mia Reyes",
			Birthdate: time.Date(2022, time.March, 14, 0, 0, 0, 0, time.UTC),
			Gender:    model.GenderFemale,
			Address:   "12 Oak Street, Springfield",
			ParentID:  parent.ID,
		}
		stamp(&child.BaseEntity)
		if err := tx.Create(child).Error; err != nil {
			return fmt.Errorf("seed child: %w", err)
		}

		application := &model.Application{
			ChildID:       &child.ID,
			StudentName:   child.FullName,
			Birthdate:     child.Birthdate,
			Gender:        child.Gender,
			Address:       child.Address,
			Grade:         "Pre-K",
			Status:        model.ApplicationApproved,
			SubmittedByID: parent.ID,
		}
		stamp(&application.BaseEntity)
		if err := tx.Create(application).Error; err != nil {
			return fmt.Errorf("seed application: %w", err)
		}

		payment := &model.Payment{
			ApplicationID: application.ID,
			MadeByID:      parent.ID,
			Type:          model.PaymentTypePayment,
			AmountCents:   25000,
			Currency:      "USD",
		}
		stamp(&payment.BaseEntity)
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("seed payment: %w", err)
		}

		student := &model.Student{
			FullName:    child.FullName,
			Birthdate:   child.Birthdate,
			Gender:      child.Gender,
			Grade:       "Pre-K",
			ChildID:     &child.ID,
			ParentID:    parent.ID,
			ClassroomID: &rooms[0].ID,
		}
		stamp(&student.BaseEntity)
		if err := tx.Create(student).Error; err != nil {
			return fmt.Errorf("seed student: %w", err)
		}

		slog.Info("seed data loaded",
			"admin", admin.Email,
			"classrooms", len(rooms))
		return nil
	})
}

func seedUser(tx *gorm.DB, email string, password string, role model.Role, first string, last string) (*model.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	hashStr := string(hash)

	user := &model.User{
		ProviderUID:   "seed-" + uuid.NewString(),
		Email:         email,
		EmailVerified: true,
		FirstName:     first,
		LastName:      last,
		PhoneNumber:   "+1-555-0100",
		PhoneVerified: true,
		Role:          role,
		IsActive:      true,
		AcceptedTerms: true,
		IsSeedUser:    true,
		PasswordHash:  &hashStr,
	}
	user.CalculateProfileCompletion()
	stamp(&user.BaseEntity)

	if err := tx.Create(user).Error; err != nil {
		return nil, fmt.Errorf("seed user %s: %w", email, err)
	}
	return user, nil
}

func stamp(base *model.BaseEntity) {
	if base.ID == uuid.Nil {
		base.ID = uuid.New()
	}
	if base.CreatedAt.IsZero() {
		base.CreatedAt = time.Now().UTC()
	}
	if base.CreatedBy == "" {
		base.CreatedBy = seedActor
	}
}
