package dispatch

import (
	"context"
	"net/http"
	"time"

	"github.com/machinebox/graphql"
	"github.com/pkg/errors"
)

// GraphQLProcessor submits batches as ingestion runs to a GraphQL workflow
// server.
type GraphQLProcessor struct {
	client *graphql.Client
}

// NewGraphQLProcessor creates a processor that runs an ingestion mutation
// against the workflow server at addr.
func NewGraphQLProcessor(addr string, timeout time.Duration) *GraphQLProcessor {
	// standard http client with our timeout
	httpClient := &http.Client{Timeout: timeout}

	// graphql client that uses our http client - our timeout is applied transitively
	return &GraphQLProcessor{
		client: graphql.NewClient(addr, graphql.WithHTTPClient(httpClient)),
	}
}

type ingestRunResponse struct {
	CreateIngestRun struct {
		ID string
	} `json:"create_ingest_run"`
}

// Process implements Processor.
func (p *GraphQLProcessor) Process(ctx context.Context, batchID string, ids []int64) error {
	mutation := graphql.NewRequest(
		`mutation($runName: String!, $ids: [Int!]!) {
			create_ingest_run(input: {
				run_name: $runName,
				record_ids: $ids
			}) {
				id
			}
		}`)
	mutation.Var("runName", batchID)
	mutation.Var("ids", ids)

	var respData ingestRunResponse
	if err := p.client.Run(ctx, mutation, &respData); err != nil {
		return errors.Wrapf(err, "failed to submit batch %s", batchID)
	}
	if respData.CreateIngestRun.ID == "" {
		return errors.Errorf("no ingest run created for batch %s", batchID)
	}
	return nil
}
