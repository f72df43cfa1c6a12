package forms

import (
	"context"
	"fmt"

	"google.golang.org/api/forms/v1"
	"google.golang.org/api/option"
)

// Feedback form layout: five required rating questions on a 1-5 radio
// scale and two optional free-text questions.
var ratingQuestions = []string{
	"How clear was the material?",
	"How engaging was the delivery?",
	"How useful do you find this meeting?",
	"How well did the pace suit you?",
	"How would you rate the meeting overall?",
}

var textQuestions = []string{
	"What did you like the most?",
	"What should be improved?",
}

// CreatedForm describes an external form that was just provisioned.
type CreatedForm struct {
	FormID       string
	ResponderURI string
}

// Client provisions Google Forms for meeting feedback.
type Client struct {
	svc *forms.Service
}

// NewClient builds a forms client from a service-account credentials file.
func NewClient(ctx context.Context, credentialsFile string) (*Client, error) {
	svc, err := forms.NewService(ctx, option.WithCredentialsFile(credentialsFile), option.WithScopes(forms.FormsBodyScope))
	if err != nil {
		return nil, fmt.Errorf("init forms service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// CreateFeedbackForm creates a form with the standard question set and
// returns its id and responder link. The title must be set on creation;
// questions are added with a follow-up batch update because the create
// call only accepts the info block.
func (c *Client) CreateFeedbackForm(ctx context.Context, title string) (*CreatedForm, error) {
	form, err := c.svc.Forms.Create(&forms.Form{
		Info: &forms.Info{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}

	requests := make([]*forms.Request, 0, len(ratingQuestions)+len(textQuestions))
	index := 0
	for _, question := range ratingQuestions {
		requests = append(requests, &forms.Request{
			CreateItem: &forms.CreateItemRequest{
				Item: &forms.Item{
					Title: question,
					QuestionItem: &forms.QuestionItem{
						Question: &forms.Question{
							Required: true,
							ChoiceQuestion: &forms.ChoiceQuestion{
								Type: "RADIO",
								Options: []*forms.Option{
									{Value: "1"}, {Value: "2"}, {Value: "3"}, {Value: "4"}, {Value: "5"},
								},
							},
						},
					},
				},
				Location: &forms.Location{Index: int64(index), ForceSendFields: []string{"Index"}},
			},
		})
		index++
	}
	for _, question := range textQuestions {
		requests = append(requests, &forms.Request{
			CreateItem: &forms.CreateItemRequest{
				Item: &forms.Item{
					Title: question,
					QuestionItem: &forms.QuestionItem{
						Question: &forms.Question{
							TextQuestion: &forms.TextQuestion{Paragraph: true},
						},
					},
				},
				Location: &forms.Location{Index: int64(index), ForceSendFields: []string{"Index"}},
			},
		})
		index++
	}

	if _, err := c.svc.Forms.BatchUpdate(form.FormId, &forms.BatchUpdateFormRequest{
		Requests: requests,
	}).Context(ctx).Do(); err != nil {
		return nil, fmt.Errorf("populate form %s: %w", form.FormId, err)
	}

	return &CreatedForm{FormID: form.FormId, ResponderURI: form.ResponderUri}, nil
}
