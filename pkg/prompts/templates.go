package prompts

// 本パッケージのテンプレート群は生成モデルへ送る英語指示文なのだ。
// 文面の調整はここに集約し、組み立てロジックは composer.go に置くのだ。

// technicalDiagramTemplate は技術系トピックに強制適用されるスタイルなのだ。
// カテゴリ設定に technical_diagram スタイルが定義されていない場合のフォールバックでもあるのだ。
const technicalDiagramTemplate = `Precise technical diagram style with clean thin linework,
mathematically accurate geometry, and an uncluttered white background.
No decorative flourishes, no artistic reinterpretation of the mathematics.`

// strictNoTextBlock はテキスト完全禁止のトピック向け警告なのだ。
const strictNoTextBlock = `ABSOLUTELY NO TEXT ALLOWED - ZERO TOLERANCE:
- NO letters, NO numbers, NO words, NO labels of any kind
- NO subtopic names, NO year levels, NO titles, NO captions, NO annotations
- NO time labels, NO month names, NO day names
- NO mathematical notation written as text
- The image MUST be 100% VISUAL ONLY - pure geometric shapes and forms
- If you are tempted to add text, DON'T - use visual representation instead`

// permittedContentBlocks はトピックごとの「許可される記号・表記」の宣言なのだ。
// 許可の無いトピックは strictNoTextBlock にフォールバックするのだ。
var permittedContentBlocks = map[Topic]string{
	TopicAlgebra: `TEXT POLICY (limited algebra exception):
- NO subtopic names, NO titles, NO year levels, NO descriptive prose
- ONLY bare variables (x, y, a, b) or simple terms (2x, x squared) are allowed
- NO full equations written out as sentences, NO explanatory text
- Everything else must be purely visual`,
	TopicLogarithm: `TEXT POLICY (limited notation exception):
- ONLY compact logarithm or exponent notation is allowed (log, powers as superscripts)
- NO words, NO titles, NO explanatory text
- NO evaluated results, NO step-by-step manipulation`,
	TopicTrigonometry: `TEXT POLICY (limited notation exception):
- ONLY angle marks and single Greek letters (theta) are allowed
- NO words, NO ratio names written out, NO degree tables
- Triangles and circles carry the meaning, not text`,
	TopicCalculus: `TEXT POLICY (limited notation exception):
- ONLY integral signs, derivative notation (dy/dx) and single variables are allowed
- NO words, NO worked solutions, NO evaluated results
- The notation decorates the curve, it does not explain it`,
	TopicStatistics: `TEXT POLICY:
- NO words, NO numbers on any chart, NO axis labels, NO legends
- Chart shapes only: bare bars, bare curves, bare plots
- The viewer must recognise the chart type from its silhouette alone`,
	TopicGeometry: `TEXT POLICY:
- NO text, NO measurements, NO angle values, NO vertex labels
- Pure shapes only: the geometry itself is the entire message`,
	TopicGraphing: `TEXT POLICY:
- NO axis numbers, NO axis labels, NO gridline values, NO equation text
- Bare axes and bare curves only
- Scale and units must remain completely unstated`,
	TopicNumber: `TEXT POLICY (limited numeral exception):
- ONLY the numerals and operator of the given expression are allowed, exactly as written
- NO answer, NO solution steps, NO intermediate calculations
- NO other numbers anywhere in the image`,
	TopicSequence: `TEXT POLICY (limited numeral exception):
- ONLY small numerals inside the pattern itself are allowed, if essential
- NO rule written out, NO next-term answer, NO labels`,
	TopicInteger: `TEXT POLICY (limited numeral exception):
- ONLY signed numerals on a bare number line are allowed
- NO words, NO labels, NO worked comparisons`,
}

// topicExemplars はトピックごとの「これだけを描け」という具体例なのだ。
var topicExemplars = map[Topic]string{
	TopicAlgebra: `- Show ONLY a balance scale with simple terms, or bare variable tiles
- NO calculators, NO notebooks, NO classrooms`,
	TopicLogarithm: `- Show ONLY a smooth exponential or logarithmic curve
- NO graph paper texture, NO calculators`,
	TopicTrigonometry: `- Show ONLY a right triangle with one marked angle, or a unit circle with one radius
- NO protractors, NO rulers`,
	TopicCalculus: `- Show ONLY a smooth curve with a single tangent line, or a shaded area under a curve
- NO graph paper, NO textbooks`,
	TopicStatistics: `- Show ONLY one bare chart form: a few bars, a dot cloud or a single curve
- NO dashboards, NO multiple chart types together`,
	TopicGeometry: `- Show ONLY the core shape or angle formation, e.g. two rays forming one angle
- For "Angles": two rays only - NO protractors
- NO measuring tools of any kind`,
	TopicGraphing: `- For "Cartesian Plane": ONLY x and y axes with at most a single point
- For "Simultaneous Linear Equations": ONLY two intersecting straight lines
- NO labels, NO gridline numbers`,
	TopicNumber: `- Show the expression exactly as given, nothing more
- For "Fractions": ONLY divided shapes representing parts
- NO answer, NO carrying marks, NO place-value charts unless that IS the subtopic`,
	TopicSequence: `- Show ONLY a short run of repeating or growing elements
- NO arrows explaining the rule, NO next-term reveal`,
	TopicCounting: `- Show ONLY a small group of identical simple objects to count
- NO numerals, NO tally marks`,
	TopicInteger: `- Show ONLY a bare number line crossing zero
- NO thermometers, NO elevators, NO word problems`,
	TopicNone: `- For "Calendar": ONLY a simple grid of squares - NO weather icons, NO month names
- For "Time": ONLY a simple clock face with hands - NO digital displays
- Ask: "What is the ONE thing that shows this subtopic?" and draw only that`,
}

// forbiddenElementsBlock は装飾要素の禁止リストなのだ。
const forbiddenElementsBlock = `WHAT TO ABSOLUTELY AVOID:
- NO weather icons (sun, clouds, rain) unless the subtopic is about weather
- NO birthday cakes, party hats or celebration icons
- NO clocks unless the subtopic is specifically about time
- NO calendars unless the subtopic is specifically about calendars
- NO scales, rulers or measuring tools unless the subtopic is about measurement
- NO pie charts or graphs unless the subtopic is specifically about that chart type
- NO decorative circles, rings or ornamental shapes
- NO mascots, NO characters, NO human figures`

// minimalismBlock は極端なミニマリズムと中央配置の指示なのだ。
const minimalismBlock = `MINIMALISM - EXTREME SIMPLICITY:
- Use 1-2 key elements maximum (often just 1 is enough)
- Remove anything that does not directly explain the subtopic
- The subject must occupy no more than 60% of the frame area

CENTERING:
- ALL elements PERFECTLY CENTERED vertically and horizontally
- At least 15% empty margin on every side of the subject
- Balanced, symmetrical composition`

// finalReminderBlock は末尾で no-text 制約を繰り返す締めの段落なのだ。
// 意図的に subtopic 名そのものは埋め込まないのだ。
const finalReminderBlock = `FINAL CRITICAL REMINDER:
- Do NOT include the subtopic name as text anywhere in the image
- Do NOT include the year level as text anywhere in the image
- Do NOT include any words or labels beyond the notation explicitly permitted above
- Show ONLY the minimal visual representation of the subtopic`

// negativePromptSuffixes はトピック別の negative prompt 追記なのだ。
var negativePromptSuffixes = map[Topic]string{
	TopicAlgebra:      `NEGATIVE PROMPT: full written equations, solution steps, prose, classrooms, calculators, textbooks`,
	TopicLogarithm:    `NEGATIVE PROMPT: evaluated results, log tables, calculators, worked steps, prose`,
	TopicTrigonometry: `NEGATIVE PROMPT: protractors, degree tables, ratio names, rulers, prose`,
	TopicCalculus:     `NEGATIVE PROMPT: worked solutions, evaluated integrals, graph paper, textbooks, prose`,
	TopicStatistics:   `NEGATIVE PROMPT: axis numbers, legends, data labels, dashboards, spreadsheets, prose`,
	TopicGeometry:     `NEGATIVE PROMPT: measurements, angle values, vertex labels, protractors, rulers, prose`,
	TopicGraphing:     `NEGATIVE PROMPT: axis numbers, axis labels, gridline values, equation text, legends, prose`,
	TopicNumber:       `NEGATIVE PROMPT: answers, solution steps, carrying marks, extra numbers, prose`,
	TopicSequence:     `NEGATIVE PROMPT: rule text, next-term answers, arrows with captions, prose`,
	TopicCounting:     `NEGATIVE PROMPT: numerals, tally marks, labels, prose`,
	TopicInteger:      `NEGATIVE PROMPT: thermometers, word problems, worked comparisons, labels, prose`,
	TopicNone:         `NEGATIVE PROMPT: text, numbers, labels, captions, decorative clutter, unrelated objects`,
}

// tuteroPoseVariants は tutero_ai の複数枚生成時に巡回適用される構図指示なのだ。
var tuteroPoseVariants = [4]string{
	`POSE VARIATION: Character centered and facing the viewer in a dynamic action pose,
mid-movement, engaging directly with the main element of the scene.`,
	`POSE VARIATION: Character seen in side profile or three-quarter view from the left,
caught mid-action, with the scene extending behind the direction of movement.`,
	`POSE VARIATION: Low-angle hero shot looking slightly up at the character,
emphasising energy and confidence against the setting.`,
	`POSE VARIATION: Wide shot with the character smaller in frame,
showing more of the environment while the character remains the clear focal point.`,
}

// netSportDirective はネット越しの競技で強制される側面カメラ指示なのだ。
// 正面構図だとネットが文字列状のノイズとして描かれやすいための措置なのだ。
const netSportDirective = `CAMERA RULE FOR NET SPORTS: Use a SIDE-PROFILE camera angle so the net
runs across the frame. NEVER shoot through the net toward the viewer.`

// netSportKeywords は側面構図を強制する競技名なのだ。
var netSportKeywords = []string{"volleyball", "badminton", "tennis", "netball", "table tennis", "ping pong"}

// classroomCompositionVariants は classroom_activity の構図バリエーションなのだ。
var classroomCompositionVariants = [4]string{
	`COMPOSITION VARIATION: Students gathered around one shared table,
with the robot hovering centrally above the middle of the workspace.`,
	`COMPOSITION VARIATION: Students at a whiteboard, one student writing,
with the robot hovering beside the board gesturing at the work.`,
	`COMPOSITION VARIATION: Floor-level group work with materials spread on a mat,
the robot hovering low among the seated students.`,
	`COMPOSITION VARIATION: Students at separate stations or lab benches,
the robot captured mid-glide between two groups.`,
}

// contextStrictConstraints は context_introduction 共通の厳格制約なのだ。
const contextStrictConstraints = `CRITICAL REQUIREMENTS:
- The context must be ACCURATELY and REALISTICALLY represented
- NO TEXT, NO WORDS, NO LABELS, NO EXPLANATIONS in the image
- NO mathematical symbols, numbers, lines or overlays
- Just the pure, high-quality depiction of the scene
- Not too cluttered - maintain clarity`

// contextNegativeSuffix は context_introduction 共通の negative prompt なのだ。
const contextNegativeSuffix = `NEGATIVE PROMPT: text, words, labels, captions, mathematical overlays,
diagrams, equations, numbers, watermarks, split panels, collages`
