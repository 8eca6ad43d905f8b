package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelez/boxkeep/core"
)

// defaultCountry is applied when an address omits its country.
const defaultCountry = "Spain"

// DirectoryService covers the thin persistence surfaces: the address book
// and collaborator management outside registration.
type DirectoryService struct {
	db core.Storage
}

func NewDirectoryService(db core.Storage) *DirectoryService {
	return &DirectoryService{db: db}
}

// CreateAddress stores a new address for the user, defaulting country and
// label when omitted.
func (s *DirectoryService) CreateAddress(ctx context.Context, userID string, input core.AddressInput) (*core.Address, error) {
	if _, err := s.db.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}

	if input.Country == "" {
		input.Country = defaultCountry
	}
	if input.Label == "" {
		input.Label = input.Street1
	}

	now := time.Now()
	address := &core.Address{
		ID:        uuid.NewString(),
		UserID:    userID,
		Label:     input.Label,
		Street1:   input.Street1,
		Street2:   input.Street2,
		City:      input.City,
		Province:  input.Province,
		ZipCode:   input.ZipCode,
		Country:   input.Country,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.CreateAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return address, nil
}

func (s *DirectoryService) GetAddressByID(ctx context.Context, addressID string) (*core.Address, error) {
	return s.db.GetAddressByID(ctx, addressID)
}

func (s *DirectoryService) GetAddresses(ctx context.Context, userID string) ([]*core.Address, error) {
	return s.db.GetAddressesByUser(ctx, userID)
}

func (s *DirectoryService) UpdateAddress(ctx context.Context, addressID string, input core.AddressInput) (*core.Address, error) {
	address, err := s.db.GetAddressByID(ctx, addressID)
	if err != nil {
		return nil, err
	}

	address.Label = input.Label
	address.Street1 = input.Street1
	address.Street2 = input.Street2
	address.City = input.City
	address.Province = input.Province
	address.ZipCode = input.ZipCode
	address.Country = input.Country
	address.UpdatedAt = time.Now()

	if err := s.db.UpdateAddress(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return address, nil
}

func (s *DirectoryService) DeleteAddress(ctx context.Context, addressID string) error {
	return s.db.DeleteAddress(ctx, addressID)
}

// AddCollaborator attaches a collaborator to a user after registration.
func (s *DirectoryService) AddCollaborator(ctx context.Context, userID string, input core.CollaboratorInput) (*core.Collaborator, error) {
	collaborator := &core.Collaborator{
		ID:        uuid.NewString(),
		UserID:    userID,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Phone:     input.Phone,
		CreatedAt: time.Now(),
	}
	if err := s.db.CreateCollaborator(ctx, collaborator); err != nil {
		return nil, fmt.Errorf("failed to create collaborator: %w", err)
	}
	return collaborator, nil
}

func (s *DirectoryService) GetCollaborators(ctx context.Context, userID string) ([]*core.Collaborator, error) {
	return s.db.GetCollaboratorsByUser(ctx, userID)
}
