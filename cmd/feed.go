package cmd

import (
	"fmt"
	"io"

	"othershorts-backend/internal/feedclient"
	"othershorts-backend/internal/models"

	"github.com/spf13/cobra"
)

func newFeedCmd() *cobra.Command {
	var (
		serverURL string
		userID    string
		token     string
		pages     int
		rate      int
		political bool
	)

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Load feed pages from a running server",
		Long:  "Drives the batch accumulator against a running server the way the mobile client does and prints each page.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			if rate > 100 {
				return fmt.Errorf("--rate must be between 0 and 100")
			}

			client := feedclient.NewClient(serverURL, feedclient.WithToken(token))
			acc := feedclient.NewAccumulator(client)
			rater := feedclient.NewRater(client)
			session := feedclient.NewSession(userID)
			out := cmd.OutOrStdout()

			for page := 1; page <= pages; page++ {
				res, err := acc.Load(cmd.Context(), session)
				if err != nil {
					return err
				}
				if res.NoVideos {
					fmt.Fprintln(out, "No videos found. Upload your watch history.")
					return nil
				}
				if len(res.Added) == 0 {
					fmt.Fprintln(out, "No more videos.")
					return nil
				}
				printPage(out, page, res)

				if rate < 0 {
					continue
				}
				rated := 0
				for _, v := range res.Added {
					ok, err := rater.Submit(cmd.Context(), session, v, rate, &political)
					if err != nil {
						return err
					}
					if ok {
						rated++
					}
				}
				fmt.Fprintf(out, "Rated %d videos with %d\n", rated, rate)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "http://localhost:3000", "base URL of the API")
	cmd.Flags().StringVar(&userID, "user", "", "viewer user id")
	cmd.Flags().StringVar(&token, "token", "", "bearer token, when the server requires one")
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to load")
	cmd.Flags().IntVar(&rate, "rate", -1, "rate every loaded video with this score, 0 to 100; negative skips rating")
	cmd.Flags().BoolVar(&political, "political", false, "political answer sent with --rate")

	return cmd
}

func printPage(out io.Writer, page int, res *feedclient.LoadResult) {
	fmt.Fprintf(out, "Page %d (%d calls", page, res.Calls)
	if res.Reset {
		fmt.Fprint(out, ", pool reset")
	}
	fmt.Fprintln(out, ")")

	for _, v := range res.Added {
		fmt.Fprintf(out, "  %s  %s\n", v.URL, describeUploader(v))
	}
}

func describeUploader(v models.FeedVideo) string {
	age, gender, country := "?", "?", "?"
	if v.Age != nil {
		age = fmt.Sprint(*v.Age)
	}
	if v.Gender != nil {
		gender = *v.Gender
	}
	if v.Country != nil {
		country = *v.Country
	}
	return fmt.Sprintf("%s, %s, %s", age, gender, country)
}
