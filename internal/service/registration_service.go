package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"schoolpay/internal/dto"
	"schoolpay/internal/model"
	"schoolpay/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotReadyForEnrollment = errors.New("registration is not ready for enrollment")
	ErrAlreadyFinalized      = errors.New("registration is already finalized")
)

type RegistrationService interface {
	Create(ctx context.Context, actor Actor, req dto.CreateRegistrationRequest) (*dto.RegistrationResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.RegistrationResponse, error)
	Enroll(ctx context.Context, actor Actor, id uuid.UUID) (*dto.RegistrationResponse, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID, reason string) error
}

type registrationService struct {
	repo        repository.RegistrationRepository
	studentRepo repository.StudentRepository
	pricingRepo repository.PricingRepository
	dueDays     int
}

func NewRegistrationService(
	repo repository.RegistrationRepository,
	studentRepo repository.StudentRepository,
	pricingRepo repository.PricingRepository,
	dueDays int,
) RegistrationService {
	return &registrationService{
		repo:        repo,
		studentRepo: studentRepo,
		pricingRepo: pricingRepo,
		dueDays:     dueDays,
	}
}

// Create opens a PENDING_PAYMENT registration, snapshotting fees from the
// pricing schema of the student's (branch, grade). The additional fee depends
// on the chosen plan: monthly collects first and last month up front,
// quarterly collects the quarter amount (2.5 months).
func (s *registrationService) Create(ctx context.Context, actor Actor, req dto.CreateRegistrationRequest) (*dto.RegistrationResponse, error) {
	studentID, err := uuid.Parse(req.StudentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStudentID, err)
	}
	student, err := s.studentRepo.FindByID(ctx, studentID)
	if err != nil {
		return nil, ErrStudentNotFound
	}
	if !actor.CanAccessBranch(student.BranchID) {
		return nil, ErrAccessDenied
	}

	pricing, err := s.pricingRepo.FindByBranchGrade(ctx, student.BranchID, student.GradeID)
	if err != nil {
		return nil, ErrNoPricingSchema
	}

	duration := model.PaymentDuration(req.PaymentDuration)
	var additionalFee decimal.Decimal
	switch duration {
	case model.DurationMonthly:
		additionalFee = pricing.MonthlyFee.Mul(decimal.NewFromInt(2))
	case model.DurationQuarterly:
		additionalFee = pricing.QuarterlyFee
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownPaymentDuration, req.PaymentDuration)
	}

	dueDate := time.Now().AddDate(0, 0, s.dueDays)
	reg := model.Registration{
		StudentID:       student.ID,
		BranchID:        student.BranchID,
		GradeID:         student.GradeID,
		Status:          model.RegistrationPendingPayment,
		PaymentDuration: duration,
		RegistrationFee: pricing.RegistrationFee,
		AdditionalFee:   additionalFee,
		ServiceFee:      pricing.ServiceFee,
		TotalAmount:     pricing.RegistrationFee.Add(additionalFee).Add(pricing.ServiceFee),
		PaymentDueDate:  &dueDate,
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		num, err := s.repo.NextRegistrationNumber(ctx, tx)
		if err != nil {
			return err
		}
		reg.RegistrationNumber = fmt.Sprintf("REG-%06d", num)
		return s.repo.Create(ctx, tx, &reg)
	})
	if txErr != nil {
		return nil, txErr
	}

	reg.Student = student
	reg.Branch = student.Branch
	reg.Grade = student.Grade
	return registrationToResponse(&reg), nil
}

func (s *registrationService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.RegistrationResponse, error) {
	reg, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, ErrRegistrationNotFound
	}
	if !actor.CanAccessBranch(reg.BranchID) {
		return nil, ErrAccessDenied
	}
	return registrationToResponse(reg), nil
}

// Enroll finalizes a paid registration: PAYMENT_COMPLETED → ENROLLED.
func (s *registrationService) Enroll(ctx context.Context, actor Actor, id uuid.UUID) (*dto.RegistrationResponse, error) {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrRegistrationNotFound
	}
	if !actor.CanAccessBranch(reg.BranchID) {
		return nil, ErrAccessDenied
	}
	if !reg.Status.CanTransitionTo(model.RegistrationEnrolled) {
		return nil, ErrNotReadyForEnrollment
	}

	err = s.repo.TransitionStatus(ctx, id, model.RegistrationPaymentCompleted, model.RegistrationEnrolled, nil)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotReadyForEnrollment
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	return registrationToResponse(updated), nil
}

// Cancel moves any non-terminal registration to CANCELLED.
func (s *registrationService) Cancel(ctx context.Context, actor Actor, id uuid.UUID, reason string) error {
	reg, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return ErrRegistrationNotFound
	}
	if !actor.CanAccessBranch(reg.BranchID) {
		return ErrAccessDenied
	}
	if reg.Status.Terminal() {
		return ErrAlreadyFinalized
	}

	err = s.repo.TransitionStatus(ctx, id, reg.Status, model.RegistrationCancelled,
		map[string]interface{}{"cancelled_reason": reason})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrAlreadyFinalized
	}
	return err
}

// ── mappers ──────────────────────────────────────────────────────────────────

func registrationToResponse(r *model.Registration) *dto.RegistrationResponse {
	resp := &dto.RegistrationResponse{
		ID:                 r.ID.String(),
		RegistrationNumber: r.RegistrationNumber,
		Status:             string(r.Status),
		PaymentDuration:    string(r.PaymentDuration),
		RegistrationFee:    r.RegistrationFee,
		AdditionalFee:      r.AdditionalFee,
		ServiceFee:         r.ServiceFee,
		TotalAmount:        r.TotalAmount,
		DiscountPercentage: r.DiscountPercentage,
		DiscountAmount:     r.DiscountAmount,
		PaidAmount:         r.PaidAmount,
		CreatedAt:          r.CreatedAt.Format(time.RFC3339),
	}
	if r.PaymentDueDate != nil {
		d := r.PaymentDueDate.Format("2006-01-02")
		resp.PaymentDueDate = &d
	}
	if r.CompletedAt != nil {
		t := r.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &t
	}
	if r.Student != nil {
		resp.Student = studentToResponse(r.Student)
	}
	if r.Branch != nil {
		resp.Branch = &dto.BranchResponse{ID: r.Branch.ID.String(), Code: r.Branch.Code, Name: r.Branch.Name}
	}
	if r.Grade != nil {
		resp.Grade = &dto.GradeResponse{ID: r.Grade.ID.String(), Name: r.Grade.Name}
	}
	return resp
}

func studentToResponse(s *model.Student) *dto.StudentResponse {
	resp := &dto.StudentResponse{
		ID:        s.ID.String(),
		StudentID: s.StudentID,
		FirstName: s.FirstName,
		LastName:  s.LastName,
	}
	if s.Parent != nil {
		resp.Parent = &dto.ParentResponse{
			ID:        s.Parent.ID.String(),
			FirstName: s.Parent.FirstName,
			LastName:  s.Parent.LastName,
			Phone:     s.Parent.Phone,
			Email:     s.Parent.Email,
		}
	}
	return resp
}
