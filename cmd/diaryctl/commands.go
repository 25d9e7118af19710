package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"diary-backend/internal/client"
	"diary-backend/internal/domains/diary/model"
	usermodel "diary-backend/internal/domains/user/model"
)

const (
	envAPI   = "DIARY_API"
	envToken = "DIARY_TOKEN"
)

// readPassword is swapped in tests.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

type cli struct {
	out     io.Writer
	baseURL string
	token   string
}

func (c *cli) api() *client.Client {
	return client.New(c.baseURL)
}

func (c *cli) session() (client.Session, error) {
	if c.token == "" {
		return client.Session{}, fmt.Errorf("not logged in: run `diaryctl login` and export %s", envToken)
	}
	return client.Session{Token: c.token}, nil
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &cli{out: out}

	root := &cobra.Command{
		Use:           "diaryctl",
		Short:         "Read and write diary entries from the terminal",
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&c.baseURL, "api", envOr(envAPI, "http://localhost:8080/api"), "API base URL")
	root.PersistentFlags().StringVar(&c.token, "token", os.Getenv(envToken), "bearer token (defaults to $"+envToken+")")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.feedCmd(),
		c.postCmd(),
		c.likeCmd(),
		c.commentCmd(),
		c.uncommentCmd(),
		c.searchCmd(),
		c.trendingCmd(),
		c.profileCmd(),
	)
	return root
}

// =====================================================
// AUTH
// =====================================================

func (c *cli) loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print the token to export",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				reader := bufio.NewReader(cmd.InOrStdin())
				fmt.Fprint(c.out, "Email: ")
				line, err := reader.ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				email = strings.TrimSpace(line)
			}

			fmt.Fprint(c.out, "Password: ")
			pw, err := readPassword()
			fmt.Fprintln(c.out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			s, resp, err := c.api().Login(cmd.Context(), email, string(pw))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Logged in as %s (id %d)\n", resp.User.Name, s.UserID)
			fmt.Fprintf(c.out, "export %s=%s\n", envToken, s.Token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the current token",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session()
			if err != nil {
				return err
			}
			if err := c.api().Logout(cmd.Context(), s); err != nil {
				return err
			}
			fmt.Fprintln(c.out, "Logged out")
			return nil
		},
	}
}

// =====================================================
// DIARIES
// =====================================================

func (c *cli) feedCmd() *cobra.Command {
	var (
		public bool
		userID int64
		page   int
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "List your entries, the public feed, or one user's public entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session()
			if err != nil {
				return err
			}

			api := c.api()
			var result *client.Page[model.DiaryWithComments]
			switch {
			case userID > 0:
				result, err = api.UserDiaries(cmd.Context(), s, userID, page, limit)
			case public:
				result, err = api.PublicDiaries(cmd.Context(), s, page, limit)
			default:
				result, err = api.OwnDiaries(cmd.Context(), s, page, limit)
			}
			if err != nil {
				return err
			}

			for _, d := range result.Items {
				printEntry(c.out, d)
			}
			fmt.Fprintf(c.out, "page %d/%d (%d entries)\n", result.Meta.Page, result.Meta.TotalPages, result.Meta.Total)
			return nil
		},
	}
	cmd.Flags().BoolVar(&public, "public", false, "show the global public feed")
	cmd.Flags().Int64Var(&userID, "user", 0, "show public entries of this user id")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", model.DefaultFeedLimit, "entries per page")
	return cmd
}

func (c *cli) postCmd() *cobra.Command {
	var private bool
	cmd := &cobra.Command{
		Use:   "post [message]",
		Short: "Write a new entry",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session()
			if err != nil {
				return err
			}
			status := model.StatusPublic
			if private {
				status = model.StatusPrivate
			}
			d, err := c.api().CreateDiary(cmd.Context(), s, model.CreateDiaryRequest{
				Message: strings.Join(args, " "),
				Status:  string(status),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Created entry #%d (%s)\n", d.ID, d.Status)
			return nil
		},
	}
	cmd.Flags().BoolVar(&private, "private", false, "only visible to you")
	return cmd
}

func (c *cli) likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like [entry-id]",
		Short: "Like or unlike an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := c.api().ToggleLike(cmd.Context(), s, id)
			if err != nil {
				return err
			}
			verb := "Unliked"
			if res.IsLiked {
				verb = "Liked"
			}
			fmt.Fprintf(c.out, "%s #%d, %d likes\n", verb, id, res.LikesCount)
			return nil
		},
	}
}

func (c *cli) commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment [entry-id] [text]",
		Short: "Comment on an entry",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			cm, err := c.api().AddComment(cmd.Context(), s, id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Added comment #%d on entry #%d\n", cm.ID, id)
			return nil
		},
	}
}

func (c *cli) uncommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uncomment [comment-id]",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session()
			if err != nil {
				return err
			}
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := c.api().DeleteComment(cmd.Context(), s, id); err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Deleted comment #%d\n", id)
			return nil
		},
	}
}

// =====================================================
// EXPLORE & PROFILE
// =====================================================

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Find users by name, email or bio",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session()
			if err != nil {
				return err
			}
			users, err := c.api().SearchUsers(cmd.Context(), s, strings.Join(args, " "))
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(c.out, "No users found")
				return nil
			}
			for _, u := range users {
				fmt.Fprintf(c.out, "#%d %s <%s> %d public entries\n", u.ID, u.Name, u.Email, u.PublicDiariesCount)
			}
			return nil
		},
	}
}

func (c *cli) trendingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trending",
		Short: "Most liked public entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session()
			if err != nil {
				return err
			}
			diaries, err := c.api().Trending(cmd.Context(), s)
			if err != nil {
				return err
			}
			for _, d := range diaries {
				printEntry(c.out, model.DiaryWithComments{DiaryResponse: d})
			}
			return nil
		},
	}
}

func (c *cli) profileCmd() *cobra.Command {
	var name, email, bio string
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show your profile, or update it with --name/--email/--bio",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.session()
			if err != nil {
				return err
			}
			api := c.api()

			current, err := api.Profile(cmd.Context(), s)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if !flags.Changed("name") && !flags.Changed("email") && !flags.Changed("bio") {
				printProfile(c.out, current)
				return nil
			}

			req := usermodel.UpdateProfileRequest{Name: current.Name, Email: current.Email, Bio: current.Bio}
			if flags.Changed("name") {
				req.Name = name
			}
			if flags.Changed("email") {
				req.Email = email
			}
			if flags.Changed("bio") {
				req.Bio = &bio
			}

			updated, err := api.UpdateProfile(cmd.Context(), s, req)
			var apiErr *client.APIError
			if errors.As(err, &apiErr) && apiErr.DaysRemaining > 0 {
				return fmt.Errorf("%s (%d days remaining)", apiErr.Message, apiErr.DaysRemaining)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(c.out, "Profile updated: %s <%s>\n", updated.Name, updated.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new display name")
	cmd.Flags().StringVar(&email, "email", "", "new email")
	cmd.Flags().StringVar(&bio, "bio", "", "new bio")
	return cmd
}

// =====================================================
// HELPERS
// =====================================================

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printEntry(w io.Writer, d model.DiaryWithComments) {
	author := fmt.Sprintf("user %d", d.UserID)
	if d.User != nil && d.User.Name != "" {
		author = d.User.Name
	}
	liked := " "
	if d.IsLikedByUser {
		liked = "♥"
	}
	fmt.Fprintf(w, "#%d %s [%s] %s\n", d.ID, author, d.Status, d.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "    %s\n", d.Message)
	fmt.Fprintf(w, "    %s %d likes, %d comments\n", liked, d.LikesCount, d.CommentsCount)
	for _, cm := range d.Comments {
		fmt.Fprintf(w, "      - %s: %s\n", cm.User.Name, cm.Comment)
	}
}

func printProfile(w io.Writer, p *usermodel.ProfileResponse) {
	fmt.Fprintf(w, "%s <%s> (%s)\n", p.Name, p.Email, p.Role)
	if p.Bio != nil {
		fmt.Fprintf(w, "%s\n", *p.Bio)
	}
	if p.CanEdit {
		fmt.Fprintln(w, "Profile can be edited now")
	} else {
		fmt.Fprintf(w, "Profile can be edited again in %d days\n", p.DaysRemaining)
	}
}
