package commands_test

import (
	"context"
	"errors"
	"testing"

	sut "github.com/Adwaitfound/tlp-provisioner/internal/application/commands"
	"github.com/Adwaitfound/tlp-provisioner/internal/application/consts"
	"github.com/stretchr/testify/require"
)

func Test_ClaimInstance_Given_Valid_Token_When_Executed_Then_Admin_Is_Created_On_The_Tenant(t *testing.T) {
	f := newFixture(consts.StatusApproved, nil)
	SUT := sut.NewClaimInstance(f.tokens, f.dbSetup)

	claimed, err := SUT.Execute(context.Background(), "signed-token", "chosen-password", "Dana")

	require.NoError(t, err)
	require.Equal(t, "req_1", claimed.AgencyID)
	require.Equal(t, "owner@acme.com", claimed.AdminEmail)
	require.Equal(t, "https://tlp-acme-legal.vercel.app", claimed.InstanceURL)
	require.Equal(t, "https://proj_1.supabase.co", claimed.SupabaseURL)
	require.Equal(t, "anon-key", claimed.AnonKey)
	require.Equal(t, 1, f.dbSetup.adminCreated)
}

func Test_ClaimInstance_Given_Unknown_Token_When_Executed_Then_Error(t *testing.T) {
	f := newFixture(consts.StatusApproved, nil)
	SUT := sut.NewClaimInstance(f.tokens, f.dbSetup)

	_, err := SUT.Execute(context.Background(), "forged-token", "chosen-password", "Dana")

	require.Error(t, err)
	require.Zero(t, f.dbSetup.adminCreated)
}

func Test_ClaimInstance_Given_Admin_Already_Exists_When_Executed_Then_Claim_Still_Succeeds(t *testing.T) {
	f := newFixture(consts.StatusApproved, nil)
	f.dbSetup.adminErr = errors.New("422 user already registered")
	SUT := sut.NewClaimInstance(f.tokens, f.dbSetup)

	claimed, err := SUT.Execute(context.Background(), "signed-token", "chosen-password", "Dana")

	require.NoError(t, err)
	require.Equal(t, "req_1", claimed.AgencyID)
}
