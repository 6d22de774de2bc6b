package service

import (
	"context"
	"time"

	"schoolpay/internal/dto"
	"schoolpay/internal/model"
	"schoolpay/internal/repository"

	"github.com/google/uuid"
)

type InvoiceService interface {
	List(ctx context.Context, actor Actor, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.InvoiceResponse, error)
	GetPDFPath(ctx context.Context, actor Actor, id uuid.UUID) (string, error)
}

type invoiceService struct {
	repo repository.InvoiceRepository
}

func NewInvoiceService(repo repository.InvoiceRepository) InvoiceService {
	return &invoiceService{repo: repo}
}

// List returns a paginated invoice list, newest first. Branch-scoped roles
// are pinned to their own branch; unrestricted roles may filter by any
// branch or see all.
func (s *invoiceService) List(ctx context.Context, actor Actor, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}

	var scope repository.InvoiceScope
	if actor.Unrestricted() {
		if filter.BranchID != "" {
			id, err := uuid.Parse(filter.BranchID)
			if err != nil {
				return nil, ErrInvalidBranchID
			}
			scope.BranchID = &id
		}
	} else {
		if actor.BranchID == nil {
			return nil, ErrAccessDenied
		}
		scope.BranchID = actor.BranchID
	}

	invoices, total, err := s.repo.List(ctx, scope, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.InvoiceListItem, 0, len(invoices))
	for i := range invoices {
		items = append(items, *invoiceToListItem(&invoices[i]))
	}

	pages := int((total + int64(filter.Limit) - 1) / int64(filter.Limit))
	return &dto.InvoiceListResponse{
		Invoices: items,
		Pagination: dto.Pagination{
			Page:  filter.Page,
			Limit: filter.Limit,
			Total: total,
			Pages: pages,
		},
	}, nil
}

func (s *invoiceService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrInvoiceNotFound
	}
	if !actor.CanAccessBranch(inv.BranchID) {
		return nil, ErrAccessDenied
	}
	return invoiceToResponse(inv), nil
}

// GetPDFPath returns the filesystem path of the generated receipt PDF.
func (s *invoiceService) GetPDFPath(ctx context.Context, actor Actor, id uuid.UUID) (string, error) {
	inv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return "", ErrInvoiceNotFound
	}
	if !actor.CanAccessBranch(inv.BranchID) {
		return "", ErrAccessDenied
	}
	if inv.PDFPath == nil || *inv.PDFPath == "" {
		return "", ErrReceiptNotReady
	}
	return *inv.PDFPath, nil
}

// ── mappers ──────────────────────────────────────────────────────────────────

func invoiceToListItem(inv *model.Invoice) *dto.InvoiceListItem {
	item := &dto.InvoiceListItem{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		TotalAmount:   inv.TotalAmount,
		FinalAmount:   inv.FinalAmount,
		PaidAmount:    inv.PaidAmount,
		Status:        string(inv.Status),
		CreatedAt:     inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.DueDate != nil {
		d := inv.DueDate.Format("2006-01-02")
		item.DueDate = &d
	}
	if inv.Student != nil {
		item.Student = studentToResponse(inv.Student)
	}
	if inv.Branch != nil {
		item.Branch = &dto.BranchResponse{ID: inv.Branch.ID.String(), Code: inv.Branch.Code, Name: inv.Branch.Name}
	}
	return item
}

func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	resp := &dto.InvoiceResponse{
		ID:             inv.ID.String(),
		InvoiceNumber:  inv.InvoiceNumber,
		TotalAmount:    inv.TotalAmount,
		DiscountAmount: inv.DiscountAmount,
		FinalAmount:    inv.FinalAmount,
		PaidAmount:     inv.PaidAmount,
		Status:         string(inv.Status),
		CreatedAt:      inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.RegistrationID != nil {
		id := inv.RegistrationID.String()
		resp.RegistrationID = &id
	}
	if inv.DueDate != nil {
		d := inv.DueDate.Format("2006-01-02")
		resp.DueDate = &d
	}
	if inv.Student != nil {
		resp.Student = studentToResponse(inv.Student)
	}
	if inv.PDFPath != nil && *inv.PDFPath != "" {
		u := "/v1/invoices/" + inv.ID.String() + "/pdf"
		resp.PDFUrl = &u
	}
	for i := range inv.Items {
		item := &inv.Items[i]
		feeType := ""
		if item.FeeType != nil {
			feeType = string(item.FeeType.Code)
		}
		resp.Items = append(resp.Items, dto.InvoiceItemResponse{
			ID:          item.ID.String(),
			FeeType:     feeType,
			Description: item.Description,
			Amount:      item.Amount,
			Quantity:    item.Quantity,
		})
	}
	for i := range inv.Payments {
		resp.Payments = append(resp.Payments, *paymentToResponse(&inv.Payments[i]))
	}
	return resp
}

func paymentToResponse(p *model.Payment) *dto.PaymentResponse {
	return &dto.PaymentResponse{
		ID:            p.ID.String(),
		PaymentNumber: p.PaymentNumber,
		InvoiceID:     p.InvoiceID.String(),
		Amount:        p.Amount,
		Method:        string(p.Method),
		Status:        string(p.Status),
		TransactionID: p.TransactionID,
		Notes:         p.Notes,
		PaymentDate:   p.PaymentDate.Format("2006-01-02"),
		CreatedAt:     p.CreatedAt.Format(time.RFC3339),
	}
}
