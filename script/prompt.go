package script

import "fmt"

const (
	Topic = "Success and Achievement"
	Goal  = "inspire people to overcome challenges, achieve success and celebrate their victories"
)

const promptPrefix = `You are tasked with creating a script for a %s video that is about 30 seconds.
Your goal is to %s.
Please follow these instructions to create an engaging and impactful video:
1. Begin by setting the scene and capturing the viewer's attention with a captivating visual.
2. Each scene cut should occur every 5-10 seconds, ensuring a smooth flow and transition throughout the video.
3. For each scene cut, provide a detailed description of the stock image being shown. ONLY ENGLISH
4. Along with each image description, include a corresponding text that complements and enhances the visual. The text should be concise and powerful.
5. Ensure that the sequence of images and text builds excitement and encourages viewers to take action.
6. Strictly output your response in a JSON list format, adhering to the following sample structure:`

const sampleOutput = `
   [
       { "image_description": "Description of the first image here.", "text": "Text accompanying the first scene cut." },
       { "image_description": "Description of the second image here.", "text": "Text accompanying the second scene cut." },
       ...
   ]`

const promptPostInstruction = `By following these instructions, you will create an impactful %s short-form video.
Output:`

// BuildPrompt returns the instructional prompt sent to the language model.
func BuildPrompt() string {
	return fmt.Sprintf(promptPrefix, Topic, Goal) + sampleOutput + fmt.Sprintf(promptPostInstruction, Topic)
}
