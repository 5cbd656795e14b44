package pipeline

import "github.com/joescharf/prscore/internal/models"

// SampleFiles is analyzed when a PR's files cannot be fetched.
func SampleFiles() []models.SourceFile {
	return []models.SourceFile{
		{
			Path:    "src/main.py",
			Content: "def calculate_sum(a, b):\n    return a + b\n\ndef main():\n    print('Hello world')\n    result = calculate_sum(5, 10)\n    print(f'Sum: {result}')\n\nif __name__ == '__main__':\n    main()",
		},
		{
			Path:    "src/utils.py",
			Content: "def format_string(text):\n    return text.strip().lower()\n\ndef is_valid_email(email):\n    # Very basic validation\n    return '@' in email",
		},
	}
}
