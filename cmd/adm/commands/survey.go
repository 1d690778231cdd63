// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"fmt"

	"feedbackapp/internal/observability"
	"feedbackapp/internal/services"
	contextutils "feedbackapp/internal/utils"

	"github.com/spf13/cobra"
)

// SurveyCommands returns the survey management commands
func SurveyCommands(surveyService *services.SurveyService, logger *observability.Logger) *cobra.Command {
	surveyCmd := &cobra.Command{
		Use:   "survey",
		Short: "Survey management commands",
		Long: `Survey management commands for the feedback application.

Available commands:
  reinvite  - Re-send the survey invite email for a customer`,
	}

	surveyCmd.AddCommand(reinviteCmd(surveyService, logger))

	return surveyCmd
}

// reinviteCmd returns the reinvite command
func reinviteCmd(surveyService *services.SurveyService, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "reinvite <customer-id>",
		Short: "Re-send the survey invite email for a customer",
		Long: `Re-send the survey invite email for a customer.

Reuses the customer's most recent unconsumed token, or mints a new one
when none exists. The customer must have consented to email contact.`,
		Args: cobra.ExactArgs(1),
		RunE: runReinvite(surveyService, logger),
	}
}

// runReinvite returns a function that re-sends the survey invite
func runReinvite(surveyService *services.SurveyService, logger *observability.Logger) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		customerID := args[0]

		logger.Info(ctx, "Re-sending survey invite", map[string]interface{}{"customer_id": customerID})

		resp, err := surveyService.Reinvite(ctx, customerID)
		if err != nil {
			logger.Error(ctx, "Failed to re-send survey invite", err, map[string]interface{}{"customer_id": customerID})
			return contextutils.WrapErrorf(err, "failed to re-send survey invite for customer %s", customerID)
		}

		emailSent := resp.EmailSent != nil && *resp.EmailSent
		fmt.Fprintf(cmd.OutOrStdout(), "Customer %s: token %s, email sent: %t\n", resp.CustomerID, resp.SurveyToken, emailSent)
		return nil
	}
}
