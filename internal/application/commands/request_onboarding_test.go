package commands_test

import (
	"context"
	"testing"

	sut "github.com/Adwaitfound/tlp-provisioner/internal/application/commands"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/dto"
	"github.com/stretchr/testify/require"
)

func Test_RequestOnboarding_Given_Missing_Owner_Email_When_Executed_Then_Validation_Error(t *testing.T) {
	SUT := sut.NewRequestOnboarding(nil)

	_, err := SUT.Execute(context.Background(), dto.ProvisioningRequest{
		AgencyName: "Acme Legal",
		OwnerName:  "Dana",
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "OwnerEmail")
}

func Test_RequestOnboarding_Given_One_Character_Agency_Name_When_Executed_Then_Validation_Error(t *testing.T) {
	SUT := sut.NewRequestOnboarding(nil)

	_, err := SUT.Execute(context.Background(), dto.ProvisioningRequest{
		AgencyName: "A",
		OwnerEmail: "owner@acme.com",
		OwnerName:  "Dana",
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "AgencyName")
}

func Test_RequestOnboarding_Given_Malformed_Email_When_Executed_Then_Validation_Error(t *testing.T) {
	SUT := sut.NewRequestOnboarding(nil)

	_, err := SUT.Execute(context.Background(), dto.ProvisioningRequest{
		AgencyName: "Acme Legal",
		OwnerEmail: "not-an-address",
		OwnerName:  "Dana",
	})

	require.Error(t, err)
	require.Contains(t, err.Error(), "email")
}
